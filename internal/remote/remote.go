// Package remote submits selected fields to the semantic validation endpoint
// one at a time and reduces the verdicts into status, hint, and error maps
// keyed by form field. Per-field dispatch is deliberate: a failed or slow
// call stays isolated to its own field and every justification remains
// attributable to the field it was produced for.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zgloszenie/accident-form/internal/api"
	"github.com/zgloszenie/accident-form/internal/mapper"
	"github.com/zgloszenie/accident-form/internal/model"
	"github.com/zgloszenie/accident-form/internal/session"
)

// ValidateAPI is the single backend call the validator issues.
type ValidateAPI interface {
	ValidateForm(ctx context.Context, sessionID string, body api.ValidateBody) (*api.ValidateResponse, error)
}

// SessionStore is the session manager surface needed for auth recovery.
type SessionStore interface {
	Ensure(ctx context.Context) (session.State, error)
	Reset()
}

// Result carries the merged outcome of one validation pass. Hints and Errors
// hold the same sanitized text; both exist because sections render hints
// under the input and errors in the form error summary.
type Result struct {
	Response *api.ValidateResponse
	Statuses map[model.FieldName]string
	Hints    map[model.FieldName]string
	Errors   map[model.FieldName]string
}

// Validator runs remote field validation against an established session.
type Validator struct {
	backend  ValidateAPI
	sessions SessionStore
}

// New builds a Validator.
func New(backend ValidateAPI, sessions SessionStore) *Validator {
	return &Validator{backend: backend, sessions: sessions}
}

func emptyResult() *Result {
	return &Result{
		Statuses: make(map[model.FieldName]string),
		Hints:    make(map[model.FieldName]string),
		Errors:   make(map[model.FieldName]string),
	}
}

// ValidateFields validates every currently non-empty backend field path
// (intersected with requested when given), sequentially, one call per
// field. Auth-class errors abort the pass and propagate so the caller can
// recover the session; any other per-field failure is downgraded to an
// objection on that field alone.
func (v *Validator) ValidateFields(ctx context.Context, sessionID string, values *model.FormValues, requested []string) (*Result, error) {
	res := emptyResult()
	payload := mapper.MapFormToBackendPayload(values)
	fields := mapper.MapFieldsToValidate(values, requested)
	if len(fields) == 0 {
		return res, nil
	}

	summary := map[string]int{api.StatusSuccess: 0, api.StatusObjection: 0}
	var combined []api.ValidationResult

	for _, path := range fields {
		single, err := v.backend.ValidateForm(ctx, sessionID, api.ValidateBody{
			Payload:          payload,
			FieldsToValidate: []string{path},
		})
		if err != nil {
			if api.IsAuthError(err) {
				return nil, err
			}
			field, ok := mapper.FormField(path)
			if !ok {
				continue
			}
			msg := failureMessage(err)
			res.Statuses[field] = api.StatusObjection
			res.Hints[field] = msg
			res.Errors[field] = msg
			summary[api.StatusObjection]++
			// Synthesized entry keeps the success/objection counters and the
			// combined result list consistent with the fields dispatched.
			combined = append(combined, api.ValidationResult{
				FieldPath:     path,
				Status:        api.StatusObjection,
				Justification: msg,
			})
			continue
		}

		combined = append(combined, single.Results...)
		summary[api.StatusSuccess] += single.Summary[api.StatusSuccess]
		summary[api.StatusObjection] += single.Summary[api.StatusObjection]

		for _, item := range single.Results {
			field, ok := mapper.FormField(item.FieldPath)
			if !ok {
				continue
			}
			res.Statuses[field] = item.Status
			if item.Status == api.StatusObjection {
				hint := SanitizeJustification(item.Justification, item.Status)
				res.Hints[field] = hint
				res.Errors[field] = hint
			}
		}
	}

	// The backend-issued version on this endpoint carries no meaning for
	// client-side merging, so the pass is stamped locally.
	res.Response = &api.ValidateResponse{
		Version: time.Now().UnixMilli(),
		Results: combined,
		Summary: summary,
	}
	return res, nil
}

// ValidateWithRecovery ensures a live session, runs ValidateFields, and on
// an auth-class failure resets the session, establishes a new one, and
// retries the whole pass exactly once.
func (v *Validator) ValidateWithRecovery(ctx context.Context, values *model.FormValues, requested []string) (*Result, error) {
	st, err := v.sessions.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	res, err := v.ValidateFields(ctx, st.SessionID, values, requested)
	if err == nil || !api.IsAuthError(err) {
		return res, err
	}

	v.sessions.Reset()
	st, err = v.sessions.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	return v.ValidateFields(ctx, st.SessionID, values, requested)
}

// failureMessage distinguishes HTTP failures from connectivity failures
// without leaking the raw error to the user.
func failureMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Problem walidacji (HTTP %d) — spróbuj ponownie.", apiErr.Status)
	}
	return "Problem połączenia z serwerem walidacji — spróbuj ponownie."
}
