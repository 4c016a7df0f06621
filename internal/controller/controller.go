// Package controller is the page-level orchestrator: it owns the canonical
// form value tree, the step state machine, and the merge of structural and
// remote validation results, and it sequences draft persistence and final
// submission.
package controller

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/zgloszenie/accident-form/internal/api"
	"github.com/zgloszenie/accident-form/internal/errs"
	"github.com/zgloszenie/accident-form/internal/mapper"
	"github.com/zgloszenie/accident-form/internal/model"
	"github.com/zgloszenie/accident-form/internal/remote"
	"github.com/zgloszenie/accident-form/internal/schema"
	"github.com/zgloszenie/accident-form/internal/session"
)

// Notifier receives transient user-facing notifications for every terminal
// outcome.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// Sessions is the session manager surface the controller needs.
type Sessions interface {
	Ensure(ctx context.Context) (session.State, error)
	Reset()
	Close(ctx context.Context) error
}

// Remote runs a remote validation pass with session recovery.
type Remote interface {
	ValidateWithRecovery(ctx context.Context, values *model.FormValues, requested []string) (*remote.Result, error)
}

// Forms covers submission and version history.
type Forms interface {
	SubmitForm(ctx context.Context, sessionID string, body api.SubmitBody) (*api.SubmitResponse, error)
	History(ctx context.Context, sessionID string, limit, offset int) (*api.HistoryResponse, error)
}

// Drafts persists the value tree locally.
type Drafts interface {
	Load() *model.FormValues
	Save(v model.FormValues) error
	Clear() error
}

// sectionPaths fixes the backend paths validated by the per-section action
// of each step. Summary validates everything (nil means no restriction).
var sectionPaths = map[model.Step][]string{
	model.StepBasic: {
		"injured_person.pesel",
		"injured_person.first_name",
		"injured_person.last_name",
		"injured_person.document_number",
		"injured_person.phone",
		"injured_address.city",
	},
	model.StepAccident: {
		"accident_info.accident_place",
		"accident_info.injuries_description",
		"accident_info.detailed_description",
		"accident_info.investigating_authority",
		"accident_info.first_aid_facility",
		"accident_info.machine_description",
	},
}

// Controller owns the form state. All exported methods are safe for use
// from the UI event loop plus background command goroutines; the mutex is
// released around network calls so rendering never blocks on the backend.
type Controller struct {
	log      *zap.Logger
	notify   Notifier
	sessions Sessions
	remote   Remote
	forms    Forms
	drafts   Drafts

	mu           sync.Mutex
	values       model.FormValues
	pendingDraft *model.FormValues
	step         model.Step
	formErrors   map[model.FieldName]string
	statuses     map[model.FieldName]string
	hints        map[model.FieldName]string
	remoteErrors map[model.FieldName]string
	history      []api.VersionSummary
	submitting   bool
}

// New builds a controller with default values on the basic step.
func New(log *zap.Logger, notify Notifier, sessions Sessions, rv Remote, forms Forms, drafts Drafts) *Controller {
	return &Controller{
		log:          log,
		notify:       notify,
		sessions:     sessions,
		remote:       rv,
		forms:        forms,
		drafts:       drafts,
		values:       model.Defaults(),
		step:         model.StepBasic,
		formErrors:   make(map[model.FieldName]string),
		statuses:     make(map[model.FieldName]string),
		hints:        make(map[model.FieldName]string),
		remoteErrors: make(map[model.FieldName]string),
	}
}

// Start loads any saved draft and reports whether one exists; the caller
// presents the continue-or-discard choice before rendering the form.
func (c *Controller) Start() bool {
	d := c.drafts.Load()
	c.mu.Lock()
	c.pendingDraft = d
	c.mu.Unlock()
	return d != nil
}

// ContinueDraft adopts the loaded draft as the working value tree.
func (c *Controller) ContinueDraft() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDraft != nil {
		c.values = *c.pendingDraft
		c.pendingDraft = nil
	}
}

// StartOver discards the draft and resets the form to defaults.
func (c *Controller) StartOver() {
	c.mu.Lock()
	c.values = model.Defaults()
	c.pendingDraft = nil
	c.step = model.StepBasic
	c.formErrors = make(map[model.FieldName]string)
	c.statuses = make(map[model.FieldName]string)
	c.hints = make(map[model.FieldName]string)
	c.remoteErrors = make(map[model.FieldName]string)
	c.mu.Unlock()
	if err := c.drafts.Clear(); err != nil {
		c.log.Warn("clear draft", zap.Error(err))
	}
	c.notify.Info("Rozpoczęto nowy formularz")
}

// Values returns a snapshot of the value tree.
func (c *Controller) Values() model.FormValues {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Step returns the active step.
func (c *Controller) Step() model.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// FormErrors returns a copy of the structural error map.
func (c *Controller) FormErrors() map[model.FieldName]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.formErrors)
}

// Statuses returns a copy of the remote status map.
func (c *Controller) Statuses() map[model.FieldName]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.statuses)
}

// Hints returns a copy of the remote hint map.
func (c *Controller) Hints() map[model.FieldName]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.hints)
}

// RemoteErrors returns a copy of the outstanding remote objection messages,
// kept separate from Hints so screens without per-field rows can list them.
func (c *Controller) RemoteErrors() map[model.FieldName]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.remoteErrors)
}

// History returns the last fetched version list.
func (c *Controller) History() []api.VersionSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.VersionSummary(nil), c.history...)
}

// SetString writes a string leaf; unknown fields are ignored.
func (c *Controller) SetString(f model.FieldName, val string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p := c.values.StringField(f); p != nil {
		*p = val
	}
}

// SetBool writes a boolean leaf; unknown fields are ignored.
func (c *Controller) SetBool(f model.FieldName, val bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p := c.values.BoolField(f); p != nil {
		*p = val
	}
}

// SaveDraft persists the value tree on explicit user request.
func (c *Controller) SaveDraft() {
	c.mu.Lock()
	vals := c.values
	c.mu.Unlock()
	if err := c.drafts.Save(vals); err != nil {
		c.log.Warn("save draft", zap.Error(err))
		c.notify.Error("Nie udało się zapisać szkicu")
		return
	}
	c.notify.Success("Szkic zapisany lokalnie")
}

// Next validates the active step and advances. Structural failures on
// non-terminal steps only warn; the summary step blocks until valid. The
// draft is persisted on every transition.
func (c *Controller) Next() error {
	c.mu.Lock()
	result := schema.ValidateStep(&c.values, c.step)
	if !result.Success {
		c.formErrors = result.Errors
		_, firstMsg := result.First()
		if c.step == model.StepSummary {
			c.mu.Unlock()
			c.notify.Error("Uzupełnij wymagane pola przed zakończeniem")
			return errs.ErrSchemaInvalid
		}
		c.advanceLocked()
		c.mu.Unlock()
		if firstMsg != "" {
			c.notify.Info("Uzupełnij później: " + firstMsg)
		} else {
			c.notify.Info("Możesz przejść dalej, ale uzupełnij brakujące pola przed wysłaniem")
		}
		return nil
	}

	c.formErrors = make(map[model.FieldName]string)
	if c.step == model.StepSummary {
		c.mu.Unlock()
		return nil
	}
	c.advanceLocked()
	c.mu.Unlock()
	c.notify.Success("Przechodzisz dalej — szkic zapisany")
	return nil
}

// Prev moves back one step and never clears data.
func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = c.step.Prev()
}

func (c *Controller) advanceLocked() {
	c.step = c.step.Next()
	if err := c.drafts.Save(c.values); err != nil {
		c.log.Warn("save draft on transition", zap.Error(err))
	}
}

// FieldBlur runs a scoped remote validation for one field, if it has a
// backend-path mapping. Fields without a mapping are a no-op.
func (c *Controller) FieldBlur(ctx context.Context, field model.FieldName) error {
	paths := mapper.BackendPaths(field)
	if len(paths) == 0 {
		return nil
	}
	return c.runRemote(ctx, paths)
}

// ValidateSection runs remote validation over the fixed backend-path list
// of the active step, marking affected fields pending first.
func (c *Controller) ValidateSection(ctx context.Context) error {
	c.mu.Lock()
	paths := sectionPaths[c.step]
	c.mu.Unlock()
	return c.runRemote(ctx, paths)
}

// runRemote executes one remote pass tagged with the step it started on.
// Results that return after the user navigated away are discarded rather
// than merged into a no-longer-visible step.
func (c *Controller) runRemote(ctx context.Context, paths []string) error {
	c.mu.Lock()
	startStep := c.step
	vals := c.values
	affected := affectedFields(&vals, paths)
	for _, f := range affected {
		c.statuses[f] = api.StatusPending
	}
	c.mu.Unlock()

	res, err := c.remote.ValidateWithRecovery(ctx, &vals, paths)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearPendingLocked(affected)
	if err != nil {
		c.notify.Error("Nie udało się przeprowadzić walidacji — spróbuj ponownie.")
		return err
	}
	if c.step != startStep {
		c.log.Debug("discarding validation results after step change",
			zap.String("startedOn", string(startStep)),
			zap.String("active", string(c.step)),
		)
		return nil
	}
	c.mergeLocked(res)
	return nil
}

// Submit re-validates the full schema, runs a complete remote pass, and
// only with zero objections sends the payload as a new version, refreshes
// history, and clears the draft. Any failure keeps the draft.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil
	}
	c.submitting = true
	result := schema.ValidateAll(&c.values)
	if !result.Success {
		c.formErrors = result.Errors
		c.submitting = false
		c.mu.Unlock()
		c.notify.Error("Uzupełnij wymagane pola przed zakończeniem")
		return errs.ErrSchemaInvalid
	}
	c.formErrors = make(map[model.FieldName]string)
	vals := c.values
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	res, err := c.remote.ValidateWithRecovery(ctx, &vals, nil)
	if err != nil {
		c.notify.Error("Nie udało się przeprowadzić walidacji — spróbuj ponownie.")
		return err
	}
	c.mu.Lock()
	c.mergeLocked(res)
	c.mu.Unlock()
	if res.Response != nil && res.Response.Summary[api.StatusObjection] > 0 {
		c.notify.Error("Popraw pola wskazane przez walidację przed wysłaniem")
		return errs.ErrObjections
	}

	st, err := c.sessions.Ensure(ctx)
	if err != nil {
		c.notify.Error("Brak aktywnej sesji — spróbuj ponownie.")
		return err
	}
	payload := mapper.MapFormToBackendPayload(&vals)
	sub, err := c.forms.SubmitForm(ctx, st.SessionID, api.SubmitBody{Payload: payload, Source: api.SourceRaw})
	if err != nil {
		c.log.Error("submit form", zap.Error(err))
		c.notify.Error("Nie udało się wysłać formularza — szkic pozostaje zapisany")
		return err
	}

	if err := c.RefreshHistory(ctx); err != nil {
		c.log.Warn("refresh history", zap.Error(err))
	}
	if err := c.drafts.Clear(); err != nil {
		c.log.Warn("clear draft", zap.Error(err))
	}
	c.notify.Success(fmt.Sprintf("Formularz wysłany — wersja %d", sub.Version))
	return nil
}

// RefreshHistory fetches the version list; auth-class failures read as an
// empty history instead of an error.
func (c *Controller) RefreshHistory(ctx context.Context) error {
	st, err := c.sessions.Ensure(ctx)
	if err != nil {
		return err
	}
	h, err := c.forms.History(ctx, st.SessionID, 20, 0)
	if err != nil {
		if api.IsAuthError(err) {
			c.mu.Lock()
			c.history = nil
			c.mu.Unlock()
			return nil
		}
		return err
	}
	c.mu.Lock()
	c.history = h.Versions
	c.mu.Unlock()
	return nil
}

func (c *Controller) clearPendingLocked(affected []model.FieldName) {
	for _, f := range affected {
		if c.statuses[f] == api.StatusPending {
			delete(c.statuses, f)
		}
	}
}

func (c *Controller) mergeLocked(res *remote.Result) {
	for f, st := range res.Statuses {
		c.statuses[f] = st
		if st == api.StatusSuccess {
			delete(c.hints, f)
			delete(c.remoteErrors, f)
		}
	}
	for f, h := range res.Hints {
		c.hints[f] = h
	}
	for f, e := range res.Errors {
		c.remoteErrors[f] = e
	}
}

// affectedFields resolves the form fields that will actually be dispatched
// for the given backend paths, so the optimistic pending state never sticks
// to a field no call was issued for.
func affectedFields(v *model.FormValues, paths []string) []model.FieldName {
	dispatch := mapper.MapFieldsToValidate(v, paths)
	out := make([]model.FieldName, 0, len(dispatch))
	for _, p := range dispatch {
		if f, ok := mapper.FormField(p); ok {
			out = append(out, f)
		}
	}
	return out
}

func copyMap(m map[model.FieldName]string) map[model.FieldName]string {
	out := make(map[model.FieldName]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
