// Package threads implements posting, listing and editing comments on top of
// an ordered key-value backend.
package threads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/models"
	"github.com/PeterCxy/itte/pkg/security"
	"github.com/PeterCxy/itte/pkg/store/db"
	"github.com/PeterCxy/itte/pkg/store/keys"
	"github.com/PeterCxy/itte/pkg/store/pagination"
	"github.com/PeterCxy/itte/pkg/telemetry"
)

// Store is the thread store. It holds no mutable state of its own and is
// safe for concurrent use when its backend is.
type Store struct {
	backend      db.Backend
	codec        *pagination.Codec
	ids          security.IDSource
	now          func() time.Time
	defaultLimit int
	maxLimit     int
}

type Option func(*Store)

// WithIDSource overrides the comment id generator.
func WithIDSource(ids security.IDSource) Option {
	return func(s *Store) { s.ids = ids }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLimits overrides the default and maximum page sizes.
func WithLimits(def, max int) Option {
	return func(s *Store) {
		if def > 0 {
			s.defaultLimit = def
		}
		if max > 0 {
			s.maxLimit = max
		}
	}
}

func New(backend db.Backend, codec *pagination.Codec, opts ...Option) *Store {
	s := &Store{
		backend:      backend,
		codec:        codec,
		ids:          security.RandomIDs{},
		now:          time.Now,
		defaultLimit: pagination.DefaultLimit,
		maxLimit:     pagination.MaxLimit,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Backend returns the underlying backend.
func (s *Store) Backend() db.Backend { return s.backend }

// Post creates a comment from a JSON body and returns its public view.
func (s *Store) Post(ctx context.Context, body []byte) (models.PublicComment, error) {
	tr := telemetry.Track("comments.post")
	defer tr.Finish()

	in, err := models.ParseCreate(body)
	if err != nil {
		return models.PublicComment{}, err
	}
	tr.Mark("validate")

	c := models.Comment{
		Path:      in.Path,
		ID:        s.ids.NewID(security.CommentIDLength),
		CreatedAt: s.now().UnixMilli(),
		Content:   models.Sanitize(in.Content),
		Username:  in.Username,
		Email:     in.Email,
		Secret:    in.Secret,
	}
	if err := models.ValidateStoredContent(c.Content); err != nil {
		return models.PublicComment{}, err
	}

	key, err := keys.GenCommentKey(c.Path, c.CreatedAt, c.ID)
	if err != nil {
		return models.PublicComment{}, fmt.Errorf("build comment key: %w", err)
	}
	if err := s.put(ctx, key, c); err != nil {
		return models.PublicComment{}, err
	}
	tr.Mark("put")

	commentsTotal.WithLabelValues("posted").Inc()
	logger.Info("comment_posted", "path", c.Path, "id", c.ID, "created_at", c.CreatedAt)
	return c.Public(), nil
}

// List returns one page of a thread, newest first.
func (s *Store) List(ctx context.Context, q models.ListQuery) (models.CommentList, error) {
	tr := telemetry.Track("comments.list")
	defer tr.Finish()

	if q.Path == "" {
		return models.CommentList{}, models.MissingPath()
	}
	limit, err := pagination.ParseLimitWithin(q.Limit, s.defaultLimit, s.maxLimit)
	if err != nil {
		return models.CommentList{}, models.InvalidLimit(err)
	}
	var native string
	if q.Cursor != "" {
		native, err = s.codec.Decode(q.Cursor)
		if err != nil {
			return models.CommentList{}, models.InvalidCursor(err)
		}
	}
	tr.Mark("decode_cursor")

	prefix := keys.GenCommentPrefix(q.Path)
	out := models.CommentList{OK: true, List: make([]models.PublicComment, 0, limit)}
	for {
		res, err := s.backend.ListPrefix(ctx, prefix, limit-len(out.List), native)
		if err != nil {
			if errors.Is(err, pagination.ErrInvalidCursor) {
				return models.CommentList{}, models.InvalidCursor(err)
			}
			return models.CommentList{}, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, key := range res.Keys {
			c, ok, err := s.load(ctx, q.Path, key)
			if err != nil {
				return models.CommentList{}, err
			}
			if ok {
				out.List = append(out.List, c.Public())
			}
		}
		if res.Complete {
			break
		}
		native = res.Cursor
		if len(out.List) >= limit {
			out.Cursor, err = s.codec.Encode(native)
			if err != nil {
				return models.CommentList{}, err
			}
			break
		}
	}
	tr.Mark("scan")

	commentsTotal.WithLabelValues("listed").Add(float64(len(out.List)))
	logger.Debug("comments_listed", "path", q.Path, "count", len(out.List), "more", out.Cursor != "")
	return out, nil
}

// load fetches and decodes one listed key. ok is false for keys that belong
// to another path sharing the prefix or that vanished since listing.
func (s *Store) load(ctx context.Context, path, key string) (models.Comment, bool, error) {
	parts, err := keys.ParseCommentKey(key)
	if err != nil || parts.Path != path {
		return models.Comment{}, false, nil
	}
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if db.IsNotFound(err) {
			return models.Comment{}, false, nil
		}
		return models.Comment{}, false, fmt.Errorf("get %s: %w", key, err)
	}
	var c models.Comment
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.Comment{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return c, true, nil
}

// Edit replaces the content of a comment whose secret matches.
func (s *Store) Edit(ctx context.Context, body []byte) (models.PublicComment, error) {
	tr := telemetry.Track("comments.edit")
	defer tr.Finish()

	in, err := models.ParseEdit(body)
	if err != nil {
		return models.PublicComment{}, err
	}
	key, err := keys.GenCommentKey(in.Path, in.CreatedAt, in.ID)
	if err != nil {
		// a key we could never have written cannot exist
		return models.PublicComment{}, models.NotFound(err)
	}
	tr.Mark("validate")

	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if db.IsNotFound(err) {
			return models.PublicComment{}, models.NotFound(err)
		}
		return models.PublicComment{}, fmt.Errorf("get %s: %w", key, err)
	}
	var c models.Comment
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.PublicComment{}, fmt.Errorf("decode %s: %w", key, err)
	}
	tr.Mark("get")

	if !security.VerifySecret(c.Secret, in.Secret) {
		logger.Warn("comment_edit_denied", "path", c.Path, "id", c.ID)
		return models.PublicComment{}, models.WrongSecret()
	}

	content := models.Sanitize(in.Content)
	if err := models.ValidateEditedContent(content); err != nil {
		return models.PublicComment{}, err
	}
	c.Content = content
	c.Edited = true
	if err := s.put(ctx, key, c); err != nil {
		return models.PublicComment{}, err
	}
	tr.Mark("put")

	commentsTotal.WithLabelValues("edited").Inc()
	logger.Info("comment_edited", "path", c.Path, "id", c.ID)
	return c.Public(), nil
}

func (s *Store) put(ctx context.Context, key string, c models.Comment) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode comment: %w", err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
