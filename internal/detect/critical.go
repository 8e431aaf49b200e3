package detect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/message"
	"github.com/localhealth/coherence-engine/pkg/repository"
)

// Critical implements spec.md §4.10: lab results newly associated with the
// triggering document whose abnormal flag is critical_low or
// critical_high. No inference — the flag is authoritative.
func Critical(ctx context.Context, in Input) ([]*alert.Alert, error) {
	log := slog.With("detector", "critical")

	labs, err := in.Repos.Labs.List(ctx, repository.Filter{DocumentID: in.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("critical: list lab results: %w", err)
	}

	var out []*alert.Alert
	for _, l := range labs {
		if !l.Critical() {
			continue
		}
		detail := alert.CriticalDetail{
			LabResultID:        l.ID,
			TestName:           l.TestName,
			Value:              l.Value,
			Unit:               l.Unit,
			ReferenceRangeLow:  l.ReferenceRangeLow,
			ReferenceRangeHigh: l.ReferenceRangeHigh,
			AbnormalFlag:       l.AbnormalFlag,
			SourceDocumentID:   l.DocumentID,
		}
		a := newAlert(log, detail, []uuid.UUID{l.ID}, sourceDocs(in.DocumentID, l.DocumentID), "", in.Now)
		if a == nil {
			continue
		}
		a.Message = message.Build(detail)
		out = append(out, a)
	}
	return out, nil
}
