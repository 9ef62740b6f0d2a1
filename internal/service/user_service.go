package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/repository/database"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,32}$`)

// CredentialCache API key 摘要到用户 id 的缓存，未启用 redis 时为 nil
type CredentialCache interface {
	Get(ctx context.Context, digest string) (uint64, error)
	Set(ctx context.Context, digest string, userID uint64) error
}

type UserService struct {
	repo    *database.UserRepository
	follows *database.FollowRepository
	cache   CredentialCache
	tokens  *pkg.TokenIssuer
}

func NewUserService(repo *database.UserRepository, follows *database.FollowRepository, cache CredentialCache, tokens *pkg.TokenIssuer) *UserService {
	return &UserService{repo: repo, follows: follows, cache: cache, tokens: tokens}
}

// Profile 用户主页信息，关注/粉丝列表只带第一页
type Profile struct {
	ID             uint64          `json:"id"`
	Name           string          `json:"name"`
	FollowerCount  int64           `json:"follower_count"`
	FollowingCount int64           `json:"following_count"`
	Followers      []model.UserRef `json:"followers"`
	Following      []model.UserRef `json:"following"`
	IsFollowing    *bool           `json:"is_following,omitempty"`
}

// Resolve API key -> 用户 id。缓存出错时直接回源数据库
func (s *UserService) Resolve(ctx context.Context, apiKey string) (uint64, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return 0, pkg.ErrInvalidCredential
	}
	digest := pkg.DigestAPIKey(apiKey)

	if s.cache != nil {
		if id, err := s.cache.Get(ctx, digest); err == nil {
			return id, nil
		}
	}

	user, err := s.repo.FindByAPIKeyDigest(ctx, digest)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err = s.cache.Set(ctx, digest, user.ID); err != nil {
			log.Warn().Err(err).Uint64("user", user.ID).Msg("cache credential failed")
		}
	}
	return user.ID, nil
}

// Register 创建用户，返回明文 API key，之后不可再取回
func (s *UserService) Register(ctx context.Context, name string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	if !namePattern.MatchString(name) {
		return nil, "", pkg.ErrInvalidName
	}
	key, err := pkg.NewAPIKey()
	if err != nil {
		return nil, "", err
	}
	user := &model.User{Name: name, APIKeyDigest: pkg.DigestAPIKey(key)}
	if err = s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}
	log.Info().Uint64("user", user.ID).Str("name", name).Msg("user registered")
	return user, key, nil
}

func (s *UserService) Get(ctx context.Context, userID uint64) (*model.User, error) {
	if userID == 0 {
		return nil, pkg.ErrInvalidID
	}
	return s.repo.FindByID(ctx, userID)
}

// Profile viewerID 非 0 且不是本人时附带 is_following
func (s *UserService) Profile(ctx context.Context, userID, viewerID uint64) (*Profile, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{ID: user.ID, Name: user.Name}

	if p.FollowerCount, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if p.FollowingCount, err = s.follows.CountFollowings(ctx, userID); err != nil {
		return nil, err
	}
	followers, _, err := s.follows.ListFollowers(ctx, userID, 0, database.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	following, _, err := s.follows.ListFollowings(ctx, userID, 0, database.DefaultPageSize)
	if err != nil {
		return nil, err
	}
	p.Followers = lo.Map(followers, func(f model.Follow, _ int) model.UserRef { return f.Follower.Ref() })
	p.Following = lo.Map(following, func(f model.Follow, _ int) model.UserRef { return f.Followee.Ref() })

	if viewerID != 0 && viewerID != userID {
		ok, err := s.follows.IsFollowing(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
		p.IsFollowing = &ok
	}
	return p, nil
}

// IssueToken 用已认证的身份换一对 JWT
func (s *UserService) IssueToken(ctx context.Context, userID uint64) (*pkg.Pair, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.tokens.GeneratePair(userID)
}

func (s *UserService) RefreshToken(ctx context.Context, refresh string) (*pkg.Pair, error) {
	pair, err := s.tokens.Refresh(refresh)
	if err != nil {
		return nil, err
	}
	// 用户被删除后 refresh 不再有效
	uid, err := s.tokens.ParseAccess(pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if _, err = s.repo.FindByID(ctx, uid); err != nil {
		if errors.Is(err, pkg.ErrUserNotFound) {
			return nil, pkg.ErrRefreshInvalid
		}
		return nil, err
	}
	return pair, nil
}

// ResolveToken bearer access token -> 用户 id
func (s *UserService) ResolveToken(token string) (uint64, error) {
	return s.tokens.ParseAccess(token)
}
