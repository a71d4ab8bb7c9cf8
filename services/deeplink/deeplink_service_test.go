package deeplink

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WeSplit-io/WeSplit-Backend/services/contact"
	"github.com/WeSplit-io/WeSplit-Backend/services/group"
	"github.com/WeSplit-io/WeSplit-Backend/services/guard"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/paylink"
)

const usableAddress = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type fakeContacts struct {
	mu      sync.Mutex
	calls   int
	err     error
	entered chan struct{} // closed when the first call arrives
	release chan struct{} // first call blocks until closed, when set
}

func (f *fakeContacts) AddContactByAddress(ctx context.Context, ownerID int64, walletAddress string) error {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()

	if first && f.entered != nil {
		close(f.entered)
	}
	if first && f.release != nil {
		<-f.release
	}
	return f.err
}

func (f *fakeContacts) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGroups struct {
	mu    sync.Mutex
	codes []string
	users []int64
	err   error
}

func (f *fakeGroups) JoinGroup(ctx context.Context, userID int64, inviteCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	f.codes = append(f.codes, inviteCode)
	return f.err
}

type fakeNav struct {
	mu     sync.Mutex
	routes []string
	params []map[string]string
}

func (f *fakeNav) NavigateTo(routeName string, params map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, routeName)
	f.params = append(f.params, params)
}

func testLogger() *logging.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return &logging.Logger{Logger: l}
}

func newTestRouter(contacts ContactAdder, groups GroupJoiner, nav Navigator) *Router {
	return NewRouter(paylink.NewParser(""), contacts, groups, nav, guard.NewActionGuard(), testLogger())
}

func TestProfileLinkDispatchedOnceUnderConcurrentActivation(t *testing.T) {
	contacts := &fakeContacts{entered: make(chan struct{}), release: make(chan struct{})}
	r := newTestRouter(contacts, &fakeGroups{}, nil)
	uri := "wesplit://profile/" + usableAddress

	var first *RoutedAction
	var firstErr error
	done := make(chan struct{})
	go func() {
		first, firstErr = r.Route(context.Background(), uri, 7)
		close(done)
	}()

	<-contacts.entered
	second, err := r.Route(context.Background(), uri, 7)
	require.NoError(t, err, "a double activation is absorbed, not errored")
	assert.True(t, second.Deduplicated)

	close(contacts.release)
	<-done

	require.NoError(t, firstErr)
	assert.Equal(t, paylink.KindProfile, first.Kind)
	assert.False(t, first.Deduplicated)
	assert.Equal(t, 1, contacts.callCount(), "the collaborator must run exactly once")
}

func TestSendLinkInvalidRecipientRejectedWithoutNavigation(t *testing.T) {
	nav := &fakeNav{}
	r := newTestRouter(&fakeContacts{}, &fakeGroups{}, nav)

	_, err := r.Route(context.Background(), "wesplit://send/not-a-real-address", 7)

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, CategoryValidation, rej.Category)
	assert.Empty(t, nav.routes, "no navigation side effect for a rejected link")
}

func TestJoinLinkDispatchesGroupJoin(t *testing.T) {
	groups := &fakeGroups{}
	r := newTestRouter(&fakeContacts{}, groups, nil)

	action, err := r.Route(context.Background(), "wesplit://join/xK9mP2qa", 7)
	require.NoError(t, err)

	assert.Equal(t, paylink.KindJoin, action.Kind)
	assert.Equal(t, []int64{7}, groups.users)
	assert.Equal(t, []string{"xK9mP2qa"}, groups.codes)
}

func TestJoinLinkExpiredInviteRejected(t *testing.T) {
	groups := &fakeGroups{err: group.ErrInviteExpired}
	r := newTestRouter(&fakeContacts{}, groups, nil)

	_, err := r.Route(context.Background(), "wesplit://join/xK9mP2qa", 7)

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, CategoryValidation, rej.Category)
	assert.Contains(t, rej.Reason, "expired")
}

func TestJoinLinkUndecodableCodeRejected(t *testing.T) {
	groups := &fakeGroups{err: group.ErrBadInviteCode}
	r := newTestRouter(&fakeContacts{}, groups, nil)

	_, err := r.Route(context.Background(), "wesplit://join/zzzzzzzz", 7)

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, CategoryValidation, rej.Category)
}

func TestMutatingLinksRequireAuthentication(t *testing.T) {
	contacts := &fakeContacts{}
	groups := &fakeGroups{}
	r := newTestRouter(contacts, groups, nil)

	for _, uri := range []string{
		"wesplit://profile/" + usableAddress,
		"wesplit://join/xK9mP2qa",
	} {
		_, err := r.Route(context.Background(), uri, 0)

		var rej *Rejection
		require.ErrorAs(t, err, &rej, uri)
		assert.Equal(t, CategoryAuth, rej.Category, uri)
	}

	assert.Zero(t, contacts.callCount())
	assert.Empty(t, groups.codes)
}

func TestProfileLinkForExistingContactAbsorbedSilently(t *testing.T) {
	contacts := &fakeContacts{err: contact.ErrContactExists}
	r := newTestRouter(contacts, &fakeGroups{}, nil)

	action, err := r.Route(context.Background(), "wesplit://profile/"+usableAddress, 7)
	require.NoError(t, err)
	assert.True(t, action.Deduplicated)
}

func TestCollaboratorFailureRejectsAndReleasesGuard(t *testing.T) {
	contacts := &fakeContacts{err: errors.New("contact store is down")}
	r := newTestRouter(contacts, &fakeGroups{}, nil)
	uri := "wesplit://profile/" + usableAddress

	_, err := r.Route(context.Background(), uri, 7)

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, CategoryCollaborator, rej.Category)
	assert.NotContains(t, rej.Reason, "down", "internal error text stays out of the user message")

	// The failure released the guard, so a retry reaches the collaborator.
	contacts.err = nil
	action, retryErr := r.Route(context.Background(), uri, 7)
	require.NoError(t, retryErr)
	assert.False(t, action.Deduplicated)
	assert.Equal(t, 2, contacts.callCount())
}

func TestRawAddressFallsBackToSendNavigation(t *testing.T) {
	nav := &fakeNav{}
	r := newTestRouter(&fakeContacts{}, &fakeGroups{}, nav)

	action, err := r.Route(context.Background(), usableAddress, 7)
	require.NoError(t, err)

	assert.Equal(t, paylink.KindSend, action.Kind)
	assert.Equal(t, RouteSend, action.Route)
	require.Len(t, nav.routes, 1)
	assert.Equal(t, usableAddress, nav.params[0]["recipient"])
}

func TestAppSchemeNeverFallsBackToRawHandling(t *testing.T) {
	r := newTestRouter(&fakeContacts{}, &fakeGroups{}, nil)

	_, err := r.Route(context.Background(), "wesplit://sendto/"+usableAddress, 7)

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, CategoryParse, rej.Category)
}

func TestUnknownRecipientNavigatesWithWarning(t *testing.T) {
	nav := &fakeNav{}
	r := newTestRouter(&fakeContacts{}, &fakeGroups{}, nav)
	// In-range base58 that decodes to the wrong key length classifies as
	// unknown rather than invalid.
	unknown := strings.Repeat("1", 43)

	action, err := r.Route(context.Background(), "wesplit://send/"+unknown, 7)
	require.NoError(t, err)

	assert.NotEmpty(t, action.Warning)
	require.Len(t, nav.routes, 1, "unknown addresses pass through with a warning")
}

func TestPaymentRequestCarriesNavigationParams(t *testing.T) {
	nav := &fakeNav{}
	r := newTestRouter(&fakeContacts{}, &fakeGroups{}, nav)
	uri := "solana:" + usableAddress + "?amount=12.5&label=Dinner&message=Thanks"

	action, err := r.Route(context.Background(), uri, 7)
	require.NoError(t, err)

	assert.Equal(t, RoutePaymentRequest, action.Route)
	assert.Equal(t, "12.5", action.Params["amount"])
	assert.Equal(t, "USDC", action.Params["currency"])
	assert.Equal(t, "Dinner", action.Params["label"])
	assert.Equal(t, "Thanks", action.Params["message"])
	require.Len(t, nav.routes, 1)
}

func TestParseFailureCategories(t *testing.T) {
	r := newTestRouter(&fakeContacts{}, &fakeGroups{}, nil)

	cases := []struct {
		uri      string
		category Category
	}{
		{"", CategoryParse},
		{"wesplit://profile", CategoryParse},
		{"solana:" + usableAddress + "?amount=-5", CategoryValidation},
		{"solana:nope", CategoryValidation},
	}

	for _, tc := range cases {
		_, err := r.Route(context.Background(), tc.uri, 7)

		var rej *Rejection
		require.ErrorAs(t, err, &rej, tc.uri)
		assert.Equal(t, tc.category, rej.Category, tc.uri)
	}
}
