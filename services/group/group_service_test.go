package group

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/WeSplit-io/WeSplit-Backend/services/guard"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
)

type MockGroupStore struct {
	mock.Mock
}

func (m *MockGroupStore) CreateGroup(ctx context.Context, name string, creatorID int64, icon string) (*Group, error) {
	args := m.Called(ctx, name, creatorID, icon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Group), args.Error(1)
}

func (m *MockGroupStore) GetGroup(ctx context.Context, groupID int64) (*Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Group), args.Error(1)
}

func (m *MockGroupStore) ListGroupsForUser(ctx context.Context, userID int64) ([]Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Group), args.Error(1)
}

func (m *MockGroupStore) AddMember(ctx context.Context, groupID, userID int64) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupStore) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupStore) InsertInvite(ctx context.Context, groupID, createdBy int64, expiresAt time.Time) (*Invite, error) {
	args := m.Called(ctx, groupID, createdBy, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invite), args.Error(1)
}

func (m *MockGroupStore) GetInvite(ctx context.Context, inviteID int64) (*Invite, error) {
	args := m.Called(ctx, inviteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Invite), args.Error(1)
}

func (m *MockGroupStore) InvitePreview(ctx context.Context, inviteID int64) (*InvitePreview, error) {
	args := m.Called(ctx, inviteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InvitePreview), args.Error(1)
}

func (m *MockGroupStore) DeleteExpiredInvites(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func testLogger() *logging.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return &logging.Logger{Logger: l}
}

func testCodec(t *testing.T) *InviteCodec {
	t.Helper()
	codec, err := NewInviteCodec("test-invite-salt")
	require.NoError(t, err)
	return codec
}

func newService(t *testing.T, repo GroupStore) *GroupService {
	t.Helper()
	return NewGroupService(repo, testCodec(t), guard.NewActionGuard(), testLogger())
}

func TestInviteCodecRoundTrip(t *testing.T) {
	codec := testCodec(t)
	linkSafe := regexp.MustCompile(`^[0-9a-zA-Z]+$`)

	for _, id := range []int64{1, 42, 987654} {
		code, err := codec.Encode(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(code), inviteCodeMinLength)
		assert.Regexp(t, linkSafe, code, "codes must survive a wesplit://join/ path segment")

		back, err := codec.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, id, back)
	}
}

func TestInviteCodecRejectsGarbage(t *testing.T) {
	codec := testCodec(t)

	// A foreign-salt code may still decode to some integer (hashids are
	// not authenticated); the invite lookup backstops that. Outright
	// garbage must fail here.
	for _, code := range []string{"", "!!!", "with space", "emoji🎉"} {
		_, err := codec.Decode(code)
		assert.ErrorIs(t, err, ErrBadInviteCode, "code %q", code)
	}
}

func TestJoinHappyPath(t *testing.T) {
	repo := new(MockGroupStore)
	svc := newService(t, repo)
	code, _ := svc.codec.Encode(5)

	repo.On("GetInvite", mock.Anything, int64(5)).
		Return(&Invite{ID: 5, GroupID: 30, ExpiresAt: time.Now().Add(time.Hour)}, nil)
	repo.On("AddMember", mock.Anything, int64(30), int64(7)).Return(nil)
	repo.On("GetGroup", mock.Anything, int64(30)).Return(&Group{ID: 30, Name: "Ski Trip"}, nil)

	res, err := svc.Join(context.Background(), 7, code)
	require.NoError(t, err)
	assert.False(t, res.AlreadyMember)
	assert.Equal(t, "Ski Trip", res.Group.Name)
	repo.AssertExpectations(t)
}

func TestJoinExpiredInvite(t *testing.T) {
	repo := new(MockGroupStore)
	svc := newService(t, repo)
	code, _ := svc.codec.Encode(5)

	repo.On("GetInvite", mock.Anything, int64(5)).
		Return(&Invite{ID: 5, GroupID: 30, ExpiresAt: time.Now().Add(-time.Minute)}, nil)

	_, err := svc.Join(context.Background(), 7, code)
	assert.ErrorIs(t, err, ErrInviteExpired)
	repo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinAlreadyMemberIsBenign(t *testing.T) {
	repo := new(MockGroupStore)
	svc := newService(t, repo)
	code, _ := svc.codec.Encode(5)

	repo.On("GetInvite", mock.Anything, int64(5)).
		Return(&Invite{ID: 5, GroupID: 30, ExpiresAt: time.Now().Add(time.Hour)}, nil)
	repo.On("AddMember", mock.Anything, int64(30), int64(7)).Return(ErrAlreadyMember)
	repo.On("GetGroup", mock.Anything, int64(30)).Return(&Group{ID: 30, Name: "Ski Trip"}, nil)

	res, err := svc.Join(context.Background(), 7, code)
	require.NoError(t, err)
	assert.True(t, res.AlreadyMember)
}

func TestJoinRejectsGarbageCode(t *testing.T) {
	repo := new(MockGroupStore)
	svc := newService(t, repo)

	_, err := svc.Join(context.Background(), 7, "???")
	assert.ErrorIs(t, err, ErrBadInviteCode)
	repo.AssertNotCalled(t, "GetInvite", mock.Anything, mock.Anything)
}

func TestJoinGuardBlocksDoubleActivation(t *testing.T) {
	repo := new(MockGroupStore)
	svc := newService(t, repo)
	code, _ := svc.codec.Encode(5)

	started := make(chan struct{})
	release := make(chan struct{})
	repo.On("GetInvite", mock.Anything, int64(5)).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(&Invite{ID: 5, GroupID: 30, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
	repo.On("AddMember", mock.Anything, int64(30), int64(7)).Return(nil).Once()
	repo.On("GetGroup", mock.Anything, int64(30)).Return(&Group{ID: 30}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Join(context.Background(), 7, code)
		assert.NoError(t, err)
	}()

	<-started
	_, err := svc.Join(context.Background(), 7, code)
	assert.ErrorIs(t, err, guard.ErrDuplicateAction)

	close(release)
	wg.Wait()
	repo.AssertExpectations(t)
}

func TestPreviewInviteCachesResult(t *testing.T) {
	repo := new(MockGroupStore)
	svc := newService(t, repo)
	code, _ := svc.codec.Encode(5)

	repo.On("InvitePreview", mock.Anything, int64(5)).
		Return(&InvitePreview{GroupID: 30, GroupName: "Ski Trip", MemberCount: 3, ExpiresAt: time.Now().Add(time.Hour)}, nil).
		Once()

	first, err := svc.PreviewInvite(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, code, first.Code)

	second, err := svc.PreviewInvite(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	repo.AssertExpectations(t)
}

func TestPreviewInviteExpired(t *testing.T) {
	repo := new(MockGroupStore)
	svc := newService(t, repo)
	code, _ := svc.codec.Encode(5)

	repo.On("InvitePreview", mock.Anything, int64(5)).
		Return(&InvitePreview{GroupID: 30, ExpiresAt: time.Now().Add(-time.Minute)}, nil)

	_, err := svc.PreviewInvite(context.Background(), code)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestCreateInviteRequiresMembership(t *testing.T) {
	repo := new(MockGroupStore)
	svc := newService(t, repo)

	repo.On("IsMember", mock.Anything, int64(30), int64(7)).Return(false, nil)

	_, _, err := svc.CreateInvite(context.Background(), 7, 30, 0)
	assert.ErrorIs(t, err, ErrNotMember)
	repo.AssertNotCalled(t, "InsertInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInviteDefaultsTTL(t *testing.T) {
	repo := new(MockGroupStore)
	svc := newService(t, repo)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	repo.On("IsMember", mock.Anything, int64(30), int64(7)).Return(true, nil)
	repo.On("InsertInvite", mock.Anything, int64(30), int64(7), fixed.Add(DefaultInviteTTL)).
		Return(&Invite{ID: 9, GroupID: 30, ExpiresAt: fixed.Add(DefaultInviteTTL)}, nil)

	code, inv, err := svc.CreateInvite(context.Background(), 7, 30, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, code)

	back, err := svc.codec.Decode(code)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, back)
}
