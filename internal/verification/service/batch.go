package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"docverify/internal/verification/models"
	"docverify/pkg/requestcontext"
)

// VerifyBatch verifies each document as its own sub-request. Sub-requests
// share one session and the batch metadata; results keep submission order.
func (s *Service) VerifyBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "verification.verify_batch")
	defer span.End()

	req.Meta.Normalize()
	out := &models.BatchResult{
		BatchID:    strings.TrimSpace(req.BatchID),
		Total:      len(req.Documents),
		VerifiedAt: requestcontext.Now(ctx),
	}

	switch {
	case out.BatchID == "":
		return rejectBatch(out, models.ErrorValidation, "batch id is required"), nil
	case len(req.Documents) == 0:
		return rejectBatch(out, models.ErrorValidation, "batch contains no documents"), nil
	case len(req.Documents) > s.batchMax:
		return rejectBatch(out, models.ErrorValidation, fmt.Sprintf("batch exceeds %d documents", s.batchMax)), nil
	}

	sess, err := s.sessions.Attach(ctx, req.Meta)
	if err != nil {
		s.report(ctx, err, "operation", "session_attach", "method", models.MethodBatch)
		return rejectBatch(out, models.ErrorVerification, ""), nil
	}
	// Each sub-request still reserves its own slot; this only spares the
	// caller a batch that would be cut off halfway.
	if left := s.sessions.Remaining(sess); len(req.Documents) > left {
		out.SessionID = sess.SessionID.String()
		return rejectBatch(out, models.ErrorRateLimitExceeded,
			fmt.Sprintf("batch of %d documents exceeds the %d verifications left in this session", len(req.Documents), left)), nil
	}

	meta := req.Meta
	meta.SessionID = sess.SessionID.String()
	out.SessionID = meta.SessionID

	results := make([]models.VerificationResult, len(req.Documents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, doc := range req.Documents {
		g.Go(func() error {
			res, err := s.Verify(gctx, subRequest(doc, meta))
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Results = results
	for _, r := range results {
		if r.IsValid {
			out.ValidCount++
		} else {
			out.InvalidCount++
		}
	}
	out.IsValid = out.InvalidCount == 0
	if out.IsValid {
		out.Message = "all documents are valid"
	} else {
		out.Message = fmt.Sprintf("%d of %d documents are not valid", out.InvalidCount, out.Total)
	}
	return out, nil
}

func subRequest(doc models.BatchDocument, meta models.RequestMeta) models.VerificationRequest {
	if strings.TrimSpace(doc.VerificationCode) != "" {
		return models.VerificationRequest{
			Method:           models.MethodManualEntry,
			VerificationCode: doc.VerificationCode,
			Meta:             meta,
		}
	}
	return models.VerificationRequest{
		Method:         models.MethodDocumentLookup,
		DocumentNumber: doc.DocumentNumber,
		DocumentType:   doc.DocumentType,
		Meta:           meta,
	}
}
