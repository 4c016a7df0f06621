package stubserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zgloszenie/accident-form/internal/api"
	"github.com/zgloszenie/accident-form/internal/model"
	"github.com/zgloszenie/accident-form/internal/remote"
	"github.com/zgloszenie/accident-form/internal/session"
)

func newStack(t *testing.T) (*api.Client, *session.Manager, *api.TokenStore) {
	t.Helper()
	srv := httptest.NewServer(New(zap.NewNop(), []byte("test-signing-key")).Router())
	t.Cleanup(srv.Close)

	tokens := &api.TokenStore{}
	client := api.New(srv.URL, tokens)
	mgr := session.NewManager(client, tokens, t.TempDir(), "EWYP")
	return client, mgr, tokens
}

func TestSessionLifecycle(t *testing.T) {
	_, mgr, tokens := newStack(t)
	ctx := context.Background()

	st, err := mgr.Ensure(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, st.SessionID)
	require.NotEmpty(t, st.Token)
	require.Equal(t, "active", st.Status)
	require.Equal(t, st.Token, tokens.Token())
	require.False(t, st.ExpiresAtTime().IsZero())

	// a second ensure refreshes the same session with a rotated token
	st2, err := mgr.Ensure(ctx)
	require.NoError(t, err)
	require.Equal(t, st.SessionID, st2.SessionID)

	require.NoError(t, mgr.Close(ctx))
	require.False(t, mgr.Active())
}

func TestClosedSessionRejectsCalls(t *testing.T) {
	client, mgr, _ := newStack(t)
	ctx := context.Background()

	st, err := mgr.Ensure(ctx)
	require.NoError(t, err)
	require.NoError(t, mgr.Close(ctx))

	_, err = client.RefreshSession(ctx, st.SessionID)
	require.True(t, api.IsAuthError(err), "closed session must answer with an auth-class status, got %v", err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
}

func TestUnknownSessionIs404(t *testing.T) {
	client, _, _ := newStack(t)
	_, err := client.RefreshSession(context.Background(), "no-such-session")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestTokenPinnedToSession(t *testing.T) {
	client, mgr, tokens := newStack(t)
	ctx := context.Background()

	first, err := mgr.Ensure(ctx)
	require.NoError(t, err)

	// open a second session; the store now holds the second token
	other, err := client.CreateSession(ctx, api.CreateSessionBody{FormType: "EWYP"})
	require.NoError(t, err)
	tokens.Set(other.SessionToken)

	_, err = client.RefreshSession(ctx, first.SessionID)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestValidateHeuristics(t *testing.T) {
	client, mgr, _ := newStack(t)
	ctx := context.Background()

	st, err := mgr.Ensure(ctx)
	require.NoError(t, err)

	v := model.Defaults()
	v.Pesel = "44051401359"
	v.FirstName = "Jan?"
	v.Accident.AccidentDetails = "upadek z drabiny podczas rozładunku towaru"

	res, err := remote.New(client, mgr).ValidateFields(ctx, st.SessionID, &v, nil)
	require.NoError(t, err)
	require.Equal(t, api.StatusSuccess, res.Statuses[model.FieldPesel])
	require.Equal(t, api.StatusObjection, res.Statuses[model.FieldFirstName])
	require.Contains(t, res.Hints[model.FieldFirstName], "doprecyzuj")
	require.Equal(t, api.StatusSuccess, res.Statuses[model.FieldAccidentDetails])
	require.Equal(t, 1, res.Response.Summary[api.StatusObjection])
}

func TestValidateShortDescription(t *testing.T) {
	client, mgr, _ := newStack(t)
	ctx := context.Background()

	st, err := mgr.Ensure(ctx)
	require.NoError(t, err)

	v := model.Defaults()
	v.Accident.AccidentDetails = "upadek"

	res, err := remote.New(client, mgr).ValidateFields(ctx, st.SessionID, &v, nil)
	require.NoError(t, err)
	require.Equal(t, api.StatusObjection, res.Statuses[model.FieldAccidentDetails])
	require.Contains(t, res.Hints[model.FieldAccidentDetails], "zbyt krótki")
}

func TestSubmitHistoryAndSnapshot(t *testing.T) {
	client, mgr, _ := newStack(t)
	ctx := context.Background()

	st, err := mgr.Ensure(ctx)
	require.NoError(t, err)

	payload := map[string]any{"injured_person": map[string]any{"pesel": "44051401359"}}
	sub1, err := client.SubmitForm(ctx, st.SessionID, api.SubmitBody{Payload: payload, Source: api.SourceRaw})
	require.NoError(t, err)
	require.EqualValues(t, 1, sub1.Version)

	comment := "po poprawkach"
	sub2, err := client.SubmitForm(ctx, st.SessionID, api.SubmitBody{Payload: payload, Source: api.SourceCorrected, Comment: &comment})
	require.NoError(t, err)
	require.EqualValues(t, 2, sub2.Version)

	hist, err := client.History(ctx, st.SessionID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 2, hist.TotalVersions)
	require.Len(t, hist.Versions, 2)
	// newest first
	require.EqualValues(t, 2, hist.Versions[0].Version)
	require.Equal(t, api.SourceCorrected, hist.Versions[0].Source)
	require.NotNil(t, hist.Versions[0].Comment)
	require.EqualValues(t, 1, hist.Versions[1].Version)

	page, err := client.History(ctx, st.SessionID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page.Versions, 1)
	require.EqualValues(t, 1, page.Versions[0].Version)

	snap, err := client.FormVersion(ctx, st.SessionID, 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, snap.Version)
	require.NotNil(t, snap.Payload)

	_, err = client.FormVersion(ctx, st.SessionID, 99)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestPDFDownload(t *testing.T) {
	client, mgr, tokens := newStack(t)
	ctx := context.Background()

	st, err := mgr.Ensure(ctx)
	require.NoError(t, err)
	_, err = client.SubmitForm(ctx, st.SessionID, api.SubmitBody{Payload: map[string]any{}, Source: api.SourceRaw})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.PDFURL(st.SessionID, 1), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tokens.Token())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "%PDF-"))
}

func TestAuthRecoveryEndToEnd(t *testing.T) {
	client, mgr, _ := newStack(t)
	ctx := context.Background()

	st, err := mgr.Ensure(ctx)
	require.NoError(t, err)

	// simulate server-side loss of the session
	_, err = client.CloseSession(ctx, st.SessionID)
	require.NoError(t, err)

	v := model.Defaults()
	v.Pesel = "44051401359"
	res, err := remote.New(client, mgr).ValidateWithRecovery(ctx, &v, nil)
	require.NoError(t, err)
	require.Equal(t, api.StatusSuccess, res.Statuses[model.FieldPesel])

	fresh := mgr.Current()
	require.NotEqual(t, st.SessionID, fresh.SessionID)
}
