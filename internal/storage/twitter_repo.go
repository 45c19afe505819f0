package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

type TwitterRepo struct {
	db *DB
}

func NewTwitterRepo(db *DB) *TwitterRepo {
	return &TwitterRepo{db: db}
}

func (r *TwitterRepo) CreateTwitterItem(ctx context.Context, t models.TwitterItem) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin twitter item: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertBaseItem(ctx, tx, models.Item{
		ItemID: t.ItemID, ProjectID: t.ProjectID, Text: t.Text, Type: models.ItemTypeTwitter,
	}); err != nil {
		return err
	}

	referenced, err := toJSONB(t.ReferencedTweets)
	if err != nil {
		return err
	}
	hashtags, err := toJSONB(t.Hashtags)
	if err != nil {
		return err
	}
	mentions, err := toJSONB(t.Mentions)
	if err != nil {
		return err
	}
	urls, err := toJSONB(t.URLs)
	if err != nil {
		return err
	}
	cashtags, err := toJSONB(t.Cashtags)
	if err != nil {
		return err
	}
	contextAnn, err := toJSONB(t.ContextAnnotations)
	if err != nil {
		return err
	}
	user, err := toJSONB(t.User)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
INSERT INTO twitter_item (item_id, twitter_id, twitter_author_id, created_at, language,
  conversation_id, referenced_tweets, latitude, longitude,
  hashtags, mentions, urls, cashtags, context_annotations,
  retweet_count, reply_count, like_count, quote_count, tweet_user)
VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		t.ItemID, t.TwitterID, t.TwitterAuthorID, t.CreatedAt, t.Language,
		t.ConversationID, referenced, t.Latitude, t.Longitude,
		hashtags, mentions, urls, cashtags, contextAnn,
		t.RetweetCount, t.ReplyCount, t.LikeCount, t.QuoteCount, user,
	)
	if err != nil {
		return fmt.Errorf("insert twitter item: %w", err)
	}
	return tx.Commit(ctx)
}

const twitterColumns = `i.item_id::text, i.project_id::text, i.text,
       t.twitter_id, t.twitter_author_id, t.created_at, COALESCE(t.language,''),
       t.conversation_id, t.referenced_tweets, t.latitude, t.longitude,
       t.hashtags, t.mentions, t.urls, t.cashtags, t.context_annotations,
       t.retweet_count, t.reply_count, t.like_count, t.quote_count, t.tweet_user`

func scanTwitterItem(row pgx.Row) (models.TwitterItem, error) {
	var t models.TwitterItem
	var referenced, hashtags, mentions, urls, cashtags, contextAnn, user []byte
	err := row.Scan(&t.ItemID, &t.ProjectID, &t.Text,
		&t.TwitterID, &t.TwitterAuthorID, &t.CreatedAt, &t.Language,
		&t.ConversationID, &referenced, &t.Latitude, &t.Longitude,
		&hashtags, &mentions, &urls, &cashtags, &contextAnn,
		&t.RetweetCount, &t.ReplyCount, &t.LikeCount, &t.QuoteCount, &user)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TwitterItem{}, util.ErrNotFound
	}
	if err != nil {
		return models.TwitterItem{}, fmt.Errorf("scan twitter item: %w", err)
	}
	for _, pair := range []struct {
		raw []byte
		out any
	}{
		{referenced, &t.ReferencedTweets},
		{hashtags, &t.Hashtags},
		{mentions, &t.Mentions},
		{urls, &t.URLs},
		{cashtags, &t.Cashtags},
		{contextAnn, &t.ContextAnnotations},
		{user, &t.User},
	} {
		if err := fromJSONB(pair.raw, pair.out); err != nil {
			return models.TwitterItem{}, err
		}
	}
	return t, nil
}

func (r *TwitterRepo) GetTwitterItem(ctx context.Context, itemID string) (models.TwitterItem, error) {
	return scanTwitterItem(r.db.Pool.QueryRow(ctx, `
SELECT `+twitterColumns+`
FROM item i JOIN twitter_item t ON t.item_id = i.item_id
WHERE i.item_id=$1`, itemID))
}

// GetByTwitterID resolves a tweet's platform ID to the item stored for it in
// one project, used to skip re-imports. The same tweet may exist as separate
// items in different projects.
func (r *TwitterRepo) GetByTwitterID(ctx context.Context, projectID string, twitterID int64) (models.TwitterItem, error) {
	return scanTwitterItem(r.db.Pool.QueryRow(ctx, `
SELECT `+twitterColumns+`
FROM item i JOIN twitter_item t ON t.item_id = i.item_id
WHERE i.project_id=$1 AND t.twitter_id=$2`, projectID, twitterID))
}

// ListConversation returns all of a project's stored tweets of one
// conversation tree in chronological order.
func (r *TwitterRepo) ListConversation(ctx context.Context, projectID string, conversationID int64) ([]models.TwitterItem, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT `+twitterColumns+`
FROM item i JOIN twitter_item t ON t.item_id = i.item_id
WHERE i.project_id=$1 AND t.conversation_id=$2
ORDER BY t.created_at`, projectID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	out := make([]models.TwitterItem, 0)
	for rows.Next() {
		t, err := scanTwitterItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
