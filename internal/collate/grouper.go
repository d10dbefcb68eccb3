package collate

import "github.com/govnotify/letterpipe/internal/postage"

// LetterFileRef is one rendered letter PDF ready for print.
type LetterFileRef struct {
	StorageKey     string
	SizeBytes      int64
	ServiceID      string
	OrganisationID string
	NotificationID string
}

// Batch is an ordered run of letters destined for one archive.
type Batch struct {
	Letters   []LetterFileRef
	SizeBytes int64
}

// Grouper partitions an ordered letter sequence into batches bounded by
// cumulative size and count. It is a single-pass pull iterator: call Next
// until it reports false. Not safe for concurrent use; re-invoke NewGrouper
// to restart.
//
// A file larger than maxBytes on its own is still emitted, alone in its
// own batch. A file landing exactly on maxBytes closes the batch after
// inclusion. Non-PDF keys are skipped entirely.
type Grouper struct {
	items    []LetterFileRef
	pos      int
	maxBytes int64
	maxCount int
}

func NewGrouper(items []LetterFileRef, maxBytes int64, maxCount int) *Grouper {
	return &Grouper{items: items, maxBytes: maxBytes, maxCount: maxCount}
}

// Next returns the next sealed batch. The second return is false once the
// input is exhausted.
func (g *Grouper) Next() (Batch, bool) {
	var batch Batch
	for g.pos < len(g.items) {
		item := g.items[g.pos]
		if !postage.IsPDFKey(item.StorageKey) {
			g.pos++
			continue
		}
		if len(batch.Letters) > 0 {
			if batch.SizeBytes+item.SizeBytes > g.maxBytes || len(batch.Letters) == g.maxCount {
				return batch, true
			}
		}
		batch.Letters = append(batch.Letters, item)
		batch.SizeBytes += item.SizeBytes
		g.pos++
	}
	if len(batch.Letters) > 0 {
		return batch, true
	}
	return Batch{}, false
}

// Keys returns the batch's storage keys in order.
func (b Batch) Keys() []string {
	keys := make([]string, len(b.Letters))
	for i, l := range b.Letters {
		keys[i] = l.StorageKey
	}
	return keys
}

// NotificationIDs returns the batch's notification ids in order.
func (b Batch) NotificationIDs() []string {
	ids := make([]string, len(b.Letters))
	for i, l := range b.Letters {
		ids[i] = l.NotificationID
	}
	return ids
}
