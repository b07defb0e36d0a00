package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"volunteerhub/internal/domain"
)

type fakePartnershipSink struct {
	records []*domain.PartnershipLog
	nextID  int64
	err     error
}

func (s *fakePartnershipSink) Create(_ context.Context, rec *domain.PartnershipLog) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, rec)
	return s.nextID, nil
}

type fakeActivitySink struct {
	records []*domain.ActivityLog
	nextID  int64
	err     error
}

func (s *fakeActivitySink) Create(_ context.Context, rec *domain.ActivityLog) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, rec)
	return s.nextID, nil
}

func strp(s string) *string       { return &s }
func intp(n FlexInt) *FlexInt     { return &n }
func floatp(n FlexFloat) *FlexFloat { return &n }

func TestClassifyPartnershipRoundTrip(t *testing.T) {
	partnerships := &fakePartnershipSink{}
	activities := &fakeActivitySink{}
	c := NewClassifier(partnerships, activities)

	p := &Payload{
		Kind:           KindPartnership,
		FirstName:      strp("Ada"),
		LastName:       strp("Okafor"),
		Email:          strp("ada@example.org"),
		Organization:   strp("Helping Hands"),
		FamiliesServed: intp(12),
		Events: []EventEntry{{
			EventDate:  strp("2026-05-02"),
			Site:       strp("Community Center"),
			Zip:        strp("30301"),
			Hours:      floatp(3.5),
			Volunteers: intp(8),
		}},
	}

	id, err := c.Classify(context.Background(), 42, p)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.Empty(t, activities.records)

	require.Len(t, partnerships.records, 1)
	rec := partnerships.records[0]
	require.Equal(t, 12, rec.FamiliesServed)
	require.Len(t, rec.Events, 1)
	require.Equal(t, "2026-05-02", rec.Events[0].EventDate)
	require.Equal(t, "Community Center", rec.Events[0].Site)
	require.Equal(t, "30301", rec.Events[0].Zip)
	require.Equal(t, 3.5, rec.Events[0].Hours)
	require.Equal(t, 8, rec.Events[0].Volunteers)
	require.Equal(t, domain.OCRPreparerName, rec.PreparerName)
	require.Equal(t, domain.OCRSource, rec.Source)
	require.Equal(t, int64(42), *rec.SourceFileID)
}

func TestClassifyPartnershipDefaults(t *testing.T) {
	partnerships := &fakePartnershipSink{}
	c := NewClassifier(partnerships, &fakeActivitySink{})

	_, err := c.Classify(context.Background(), 7, &Payload{Kind: KindPartnership})
	require.NoError(t, err)

	rec := partnerships.records[0]
	require.Equal(t, 0, rec.FamiliesServed)
	require.Equal(t, "N/A", rec.PositionTitle)
	require.NotNil(t, rec.Events)
	require.Empty(t, rec.Events)
}

func TestClassifyActivity(t *testing.T) {
	activities := &fakeActivitySink{}
	c := NewClassifier(&fakePartnershipSink{}, activities)

	p := &Payload{
		Kind:          KindActivity,
		VolunteerName: strp("Jane Roe"),
		Activities: []ActivityItem{{
			ActivityDate: strp("2026-04-18"),
			Activity:     strp("Tutoring"),
			Hours:        floatp(4),
		}},
	}

	id, err := c.Classify(context.Background(), 9, p)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	rec := activities.records[0]
	require.Equal(t, "Jane Roe", rec.VolunteerName)
	require.Equal(t, "N/A", rec.PositionTitle)
	require.Len(t, rec.Entries, 1)
	require.Equal(t, 4.0, rec.Entries[0].Hours)
	require.Equal(t, domain.OCRPreparerName, rec.PreparerName)
}

func TestClassifyUnknownKind(t *testing.T) {
	partnerships := &fakePartnershipSink{}
	activities := &fakeActivitySink{}
	c := NewClassifier(partnerships, activities)

	_, err := c.Classify(context.Background(), 1, &Payload{Kind: "mystery"})
	require.ErrorIs(t, err, ErrUnknownKind)
	require.Empty(t, partnerships.records)
	require.Empty(t, activities.records)
}

func TestClassifySinkFailure(t *testing.T) {
	boom := errors.New("connection reset")
	c := NewClassifier(&fakePartnershipSink{err: boom}, &fakeActivitySink{})

	_, err := c.Classify(context.Background(), 1, &Payload{Kind: KindPartnership})
	require.ErrorIs(t, err, boom)
}
