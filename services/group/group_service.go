package group

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/WeSplit-io/WeSplit-Backend/services/guard"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/metrics"
)

const (
	DefaultInviteTTL = 72 * time.Hour

	previewCacheTTL     = 5 * time.Minute
	previewCacheCleanup = 10 * time.Minute
)

// GroupStore is what the service needs from persistence.
type GroupStore interface {
	CreateGroup(ctx context.Context, name string, creatorID int64, icon string) (*Group, error)
	GetGroup(ctx context.Context, groupID int64) (*Group, error)
	ListGroupsForUser(ctx context.Context, userID int64) ([]Group, error)
	AddMember(ctx context.Context, groupID, userID int64) error
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	InsertInvite(ctx context.Context, groupID, createdBy int64, expiresAt time.Time) (*Invite, error)
	GetInvite(ctx context.Context, inviteID int64) (*Invite, error)
	InvitePreview(ctx context.Context, inviteID int64) (*InvitePreview, error)
	DeleteExpiredInvites(ctx context.Context, cutoff time.Time) (int64, error)
}

// JoinResult reports a join outcome. AlreadyMember marks the benign case
// where the invite pointed at a group the user is in; callers treat it as
// success, not an error.
type JoinResult struct {
	Group         *Group
	AlreadyMember bool
}

type GroupService struct {
	repo    GroupStore
	codec   *InviteCodec
	guards  *guard.ActionGuard
	preview *gocache.Cache
	logger  *logging.Logger
	now     func() time.Time
}

func NewGroupService(repo GroupStore, codec *InviteCodec, guards *guard.ActionGuard, logger *logging.Logger) *GroupService {
	return &GroupService{
		repo:    repo,
		codec:   codec,
		guards:  guards,
		preview: gocache.New(previewCacheTTL, previewCacheCleanup),
		logger:  logger,
		now:     time.Now,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, creatorID int64, name, icon string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}

	g, err := s.repo.CreateGroup(ctx, name, creatorID, icon)
	if err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}

	s.logger.Info(fmt.Sprintf("Created group %d for user %d", g.ID, creatorID))
	return g, nil
}

func (s *GroupService) GetGroupForUser(ctx context.Context, userID, groupID int64) (*Group, error) {
	member, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	return s.repo.GetGroup(ctx, groupID)
}

func (s *GroupService) ListGroups(ctx context.Context, userID int64) ([]Group, error) {
	return s.repo.ListGroupsForUser(ctx, userID)
}

// CreateInvite mints a share code for a group the caller belongs to.
func (s *GroupService) CreateInvite(ctx context.Context, userID, groupID int64, ttl time.Duration) (string, *Invite, error) {
	member, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return "", nil, err
	}
	if !member {
		return "", nil, ErrNotMember
	}

	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}

	inv, err := s.repo.InsertInvite(ctx, groupID, userID, s.now().Add(ttl))
	if err != nil {
		return "", nil, fmt.Errorf("creating invite: %w", err)
	}

	code, err := s.codec.Encode(inv.ID)
	if err != nil {
		return "", nil, err
	}

	return code, inv, nil
}

// PreviewInvite resolves a code into what the join screen shows. Previews
// are cached briefly since a shared link tends to be opened in bursts.
func (s *GroupService) PreviewInvite(ctx context.Context, code string) (*InvitePreview, error) {
	if cached, found := s.preview.Get(previewKey(code)); found {
		return cached.(*InvitePreview), nil
	}

	inviteID, err := s.codec.Decode(code)
	if err != nil {
		return nil, err
	}

	preview, err := s.repo.InvitePreview(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if preview.ExpiresAt.Before(s.now()) {
		return nil, ErrInviteExpired
	}

	preview.Code = code
	s.preview.Set(previewKey(code), preview, gocache.DefaultExpiration)

	return preview, nil
}

// Join adds the caller to the invite's group under the group-join guard.
// A second activation while the first is in flight comes back as
// guard.ErrDuplicateAction and is absorbed by callers as a no-op.
func (s *GroupService) Join(ctx context.Context, userID int64, code string) (*JoinResult, error) {
	var result *JoinResult
	err := s.guards.Do(guard.GroupJoinKey(userID, code), func() error {
		var err error
		result, err = s.join(ctx, userID, code)
		return err
	})
	if err != nil {
		if err == guard.ErrDuplicateAction {
			metrics.RecordGuardRejection("group-join")
		}
		return nil, err
	}

	return result, nil
}

func (s *GroupService) join(ctx context.Context, userID int64, code string) (*JoinResult, error) {
	inviteID, err := s.codec.Decode(code)
	if err != nil {
		metrics.RecordGroupJoin("bad_code")
		return nil, err
	}

	inv, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		metrics.RecordGroupJoin("not_found")
		return nil, err
	}
	if inv.ExpiresAt.Before(s.now()) {
		metrics.RecordGroupJoin("expired")
		return nil, ErrInviteExpired
	}

	alreadyMember := false
	if err := s.repo.AddMember(ctx, inv.GroupID, userID); err != nil {
		if err != ErrAlreadyMember {
			return nil, fmt.Errorf("joining group %d: %w", inv.GroupID, err)
		}
		alreadyMember = true
	}

	g, err := s.repo.GetGroup(ctx, inv.GroupID)
	if err != nil {
		return nil, err
	}

	if alreadyMember {
		metrics.RecordGroupJoin("already_member")
	} else {
		metrics.RecordGroupJoin("joined")
		s.logger.Info(fmt.Sprintf("User %d joined group %d via invite %d", userID, inv.GroupID, inviteID))
	}

	return &JoinResult{Group: g, AlreadyMember: alreadyMember}, nil
}

// JoinGroup adapts Join for the deep-link router, which only needs the
// error outcome.
func (s *GroupService) JoinGroup(ctx context.Context, userID int64, inviteCode string) error {
	_, err := s.Join(ctx, userID, inviteCode)
	return err
}

// PruneExpiredInvites backs the recurring cleanup task.
func (s *GroupService) PruneExpiredInvites(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpiredInvites(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("pruning invites: %w", err)
	}
	if n > 0 {
		s.logger.Info(fmt.Sprintf("Pruned %d expired group invites", n))
	}
	return n, nil
}

func previewKey(code string) string {
	return "invite_preview:" + code
}
