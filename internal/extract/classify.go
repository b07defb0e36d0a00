package extract

import (
	"context"
	"errors"
	"fmt"

	"volunteerhub/internal/domain"
)

// ErrUnknownKind is produced for payloads whose kind tag is missing or names
// neither form variant. Schema validation makes this unlikely, but the
// classifier still refuses rather than guessing a sink.
var ErrUnknownKind = errors.New("unknown payload kind")

// defaultPosition fills the required-but-missing position title.
const defaultPosition = "N/A"

// PartnershipSink and ActivitySink are the two downstream record stores.
// They are owned by the surrounding application; the classifier only appends
// and reads back the assigned id.
type PartnershipSink interface {
	Create(ctx context.Context, rec *domain.PartnershipLog) (int64, error)
}

type ActivitySink interface {
	Create(ctx context.Context, rec *domain.ActivityLog) (int64, error)
}

// Classifier maps an extraction payload onto one of the two downstream
// record shapes and persists it, stamping provenance so machine-derived
// entries are distinguishable from human submissions.
type Classifier struct {
	partnerships PartnershipSink
	activities   ActivitySink
}

func NewClassifier(partnerships PartnershipSink, activities ActivitySink) *Classifier {
	return &Classifier{partnerships: partnerships, activities: activities}
}

// Classify persists the payload and returns the sink-assigned record id.
func (c *Classifier) Classify(ctx context.Context, fileID int64, p *Payload) (int64, error) {
	switch p.Kind {
	case KindPartnership:
		id, err := c.partnerships.Create(ctx, buildPartnershipLog(fileID, p))
		if err != nil {
			return 0, fmt.Errorf("partnership sink write: %w", err)
		}
		return id, nil
	case KindActivity:
		id, err := c.activities.Create(ctx, buildActivityLog(fileID, p))
		if err != nil {
			return 0, fmt.Errorf("activity sink write: %w", err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, p.Kind)
	}
}

func buildPartnershipLog(fileID int64, p *Payload) *domain.PartnershipLog {
	rec := &domain.PartnershipLog{
		FirstName:      str(p.FirstName),
		LastName:       str(p.LastName),
		Email:          str(p.Email),
		Phone:          str(p.Phone),
		Organization:   str(p.Organization),
		PositionTitle:  strOr(p.PositionTitle, defaultPosition),
		FamiliesServed: count(p.FamiliesServed),
		Events:         make([]domain.PartnershipEvent, 0, len(p.Events)),
		PreparerName:   domain.OCRPreparerName,
		Source:         domain.OCRSource,
		SourceFileID:   &fileID,
	}
	for _, ev := range p.Events {
		rec.Events = append(rec.Events, domain.PartnershipEvent{
			EventDate:  str(ev.EventDate),
			Site:       str(ev.Site),
			Zip:        str(ev.Zip),
			Hours:      hours(ev.Hours),
			Volunteers: count(ev.Volunteers),
		})
	}
	return rec
}

func buildActivityLog(fileID int64, p *Payload) *domain.ActivityLog {
	rec := &domain.ActivityLog{
		VolunteerName: str(p.VolunteerName),
		Email:         str(p.Email),
		Phone:         str(p.Phone),
		Organization:  str(p.Organization),
		PositionTitle: strOr(p.PositionTitle, defaultPosition),
		Entries:       make([]domain.ActivityEntry, 0, len(p.Activities)),
		PreparerName:  domain.OCRPreparerName,
		Source:        domain.OCRSource,
		SourceFileID:  &fileID,
	}
	for _, a := range p.Activities {
		rec.Entries = append(rec.Entries, domain.ActivityEntry{
			ActivityDate: str(a.ActivityDate),
			Activity:     str(a.Activity),
			Organization: str(a.Organization),
			Location:     str(a.Location),
			Hours:        hours(a.Hours),
			Description:  str(a.Description),
		})
	}
	return rec
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func count(n *FlexInt) int {
	if n == nil {
		return 0
	}
	return int(*n)
}

func hours(n *FlexFloat) float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}
