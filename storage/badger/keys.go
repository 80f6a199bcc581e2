package badger

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"

	"github.com/IamLizu/news-aggregator/core"
)

// Key prefixes for different data types
const (
	articlePrefix        = "artrec"
	articleLinkPrefix    = "artrecl"
	articleDatePrefix    = "artrecd"
	articleTopicPrefix   = "artrect"
	articleEntityPrefix  = "artrece"
	feedCheckpointPrefix = "feedchk"
	indexValueTerminator = 0x00
)

func prefixBytes(prefix string) []byte {
	return []byte(prefix + ":")
}

// makeArticleKey generates a key for an article by ID.
// Format: prefix:id (big-endian)
func makeArticleKey(id core.ID) []byte {
	buf := prefixBytes(articlePrefix)
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makeArticleLinkKey generates the unique index key for an article link.
// Format: prefix:link
func makeArticleLinkKey(link string) []byte {
	return append(prefixBytes(articleLinkPrefix), link...)
}

// dateMicros returns the sortable timestamp for the date index.
// Instants before the Unix epoch sort first.
func dateMicros(t time.Time) uint64 {
	micros := t.UnixMicro()
	if micros < 0 {
		return 0
	}
	return uint64(micros)
}

// makeArticleDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeArticleDateKey(timestamp time.Time, id core.ID) []byte {
	buf := prefixBytes(articleDatePrefix)
	// Write in BigEndian order so lexicographic sort works correctly
	buf = binary.BigEndian.AppendUint64(buf, dateMicros(timestamp))
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makePartialArticleDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialArticleDateKey(timestamp time.Time) []byte {
	buf := prefixBytes(articleDatePrefix)
	return binary.BigEndian.AppendUint64(buf, dateMicros(timestamp))
}

// makeLastArticleDateKey returns a key sorting after every date index entry.
func makeLastArticleDateKey() []byte {
	return append(prefixBytes(articleDatePrefix), bytes.Repeat([]byte{0xff}, 16)...)
}

// cleanIndexValue removes the terminator byte so values cannot bleed into
// the ID suffix of an index key.
func cleanIndexValue(value string) string {
	return strings.ReplaceAll(value, string(rune(indexValueTerminator)), "")
}

// makePartialTopicKey generates the scan prefix for a topic.
// Format: prefix:topic\x00
func makePartialTopicKey(topic string) []byte {
	buf := append(prefixBytes(articleTopicPrefix), cleanIndexValue(topic)...)
	return append(buf, indexValueTerminator)
}

// makeTopicKey generates a composite key for the topic index.
// Format: prefix:topic\x00id
func makeTopicKey(topic string, id core.ID) []byte {
	return binary.BigEndian.AppendUint64(makePartialTopicKey(topic), uint64(id))
}

// makePartialEntityKey generates the scan prefix for an entity.
// Format: prefix:kind:name\x00
func makePartialEntityKey(kind core.EntityKind, name string) []byte {
	buf := append(prefixBytes(articleEntityPrefix), kind...)
	buf = append(buf, ':')
	buf = append(buf, cleanIndexValue(name)...)
	return append(buf, indexValueTerminator)
}

// makeEntityKey generates a composite key for an entity index.
// Format: prefix:kind:name\x00id
func makeEntityKey(kind core.EntityKind, name string, id core.ID) []byte {
	return binary.BigEndian.AppendUint64(makePartialEntityKey(kind, name), uint64(id))
}

// makeCheckpointKey generates a key for a feed checkpoint.
func makeCheckpointKey(feedURL string) []byte {
	return append(prefixBytes(feedCheckpointPrefix), feedURL...)
}
