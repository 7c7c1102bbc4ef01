package syncfocus

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stream carries finished focus sessions from request handlers to the
// write-behind persister below.
const Stream = "focus_stream"

// Run tails the focus stream and persists every finished session.
func Run(ctx context.Context, rdc *redis.Client, db *sql.DB) {
	go func() {
		lastID := "0-0"
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			// block up to 2 s for new entries
			res, err := rdc.XRead(ctx, &redis.XReadArgs{
				Streams: []string{Stream, lastID},
				Count:   100,
				Block:   2000 * time.Millisecond,
			}).Result()
			if err != nil && err != redis.Nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Warn("syncfocus.xread", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			if len(res) == 0 {
				continue
			}
			entries := res[0].Messages
			if err := persist(ctx, db, entries); err != nil {
				zap.L().Warn("syncfocus.persist", zap.Error(err))
			}
			lastID = entries[len(entries)-1].ID
		}
	}()
}

func persist(ctx context.Context, db *sql.DB, msgs []redis.XMessage) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const ins = `INSERT INTO focus_logs (user_id, start_at, end_at, track_ids)
	             VALUES ($1, to_timestamp($2), to_timestamp($3), $4)
	             ON CONFLICT DO NOTHING`
	const addTime = `UPDATE users SET total_focus_sec = total_focus_sec + $2
	                  WHERE id = $1`
	for _, m := range msgs {
		uid, ok := m.Values["uid"].(string)
		if !ok || uid == "" {
			zap.L().Warn("syncfocus.bad_entry", zap.String("id", m.ID))
			continue
		}
		start, _ := m.Values["start"].(string)
		end, _ := m.Values["end"].(string)
		tracks, _ := m.Values["tracks"].(string)
		dur, _ := m.Values["dur"].(string)

		if _, err := tx.ExecContext(ctx, ins, uid, start, end, tracks); err != nil {
			_ = tx.Rollback()
			return err
		}
		seconds, _ := strconv.ParseInt(dur, 10, 64)
		if seconds > 0 {
			if _, err := tx.ExecContext(ctx, addTime, uid, seconds); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}
