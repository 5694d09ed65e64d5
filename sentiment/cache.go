package sentiment

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/mo"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Cache is a Scorer wrapping another Scorer with a durable leveldb
// text->score cache. Remarks repeat heavily across orders, so caching
// saves remote calls across runs. Failed scorings are never cached; a
// later run may succeed where this one failed.
type Cache struct {
	db     *leveldb.DB
	scorer Scorer
}

// NewCache opens (or creates) the leveldb at dirname and wraps scorer.
func NewCache(dirname string, scorer Scorer) (*Cache, error) {
	db, err := leveldb.OpenFile(dirname, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening score cache at %v", dirname)
	}
	return &Cache{db: db, scorer: scorer}, nil
}

// Score implements Scorer.
func (c *Cache) Score(ctx context.Context, text string) mo.Option[float64] {
	key := []byte(text)
	val, err := c.db.Get(key, nil)
	if err == nil {
		score, perr := strconv.ParseFloat(string(val), 64)
		if perr == nil {
			return mo.Some(score)
		}
		// unreadable entry, fall through and rescore
	}
	score := c.scorer.Score(ctx, text)
	if s, ok := score.Get(); ok {
		val := strconv.FormatFloat(s, 'f', -1, 64)
		if err := c.db.Put(key, []byte(val), nil); err != nil {
			// cache write failure doesn't invalidate the score
			return score
		}
	}
	return score
}

// Close syncs and closes the underlying leveldb.
func (c *Cache) Close() error {
	return errors.Wrap(c.db.Close(), "closing score cache")
}
