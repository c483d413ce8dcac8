package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/howard-nolan/questionrouter/internal/model"
)

// canonicalAnswer is the JSON shape answerFingerprint hashes over. Field
// order is fixed by struct declaration order so two Go processes
// encoding the same logical answer always produce identical bytes.
type canonicalAnswer struct {
	Type      model.QuestionType `json:"type"`
	Choice    []string           `json:"choice,omitempty"`
	Judgement *bool              `json:"judgement,omitempty"`
	Text      []string           `json:"text,omitempty"`
}

// answerFingerprint computes the dedup key for an answer's payload
// shape (§4.3): two answers with the same type/choice/judgement/text
// collapse to one stored Answer row regardless of which provider said
// it. Choice and Text slices are sorted before hashing so that
// equivalent answers returned in a different order still collapse.
func answerFingerprint(a model.Answer) string {
	choice := append([]string(nil), a.Choice...)
	sort.Strings(choice)
	text := append([]string(nil), a.Text...)
	sort.Strings(text)

	canon := canonicalAnswer{
		Type:      a.Type,
		Choice:    choice,
		Judgement: a.Judgement,
		Text:      text,
	}
	// canonicalAnswer's fields are fixed and json.Marshal orders struct
	// fields by declaration, so this encoding is deterministic.
	b, err := json.Marshal(canon)
	if err != nil {
		// canonicalAnswer contains no channels/functions/cyclic types,
		// so Marshal cannot fail in practice.
		panic("cache: unreachable answer fingerprint marshal failure: " + err.Error())
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// readThroughKey derives the Redis key for a normalized question
// identity, used by both FindExact and BatchGetAnswers lookups in
// RedisReadThrough.
func readThroughKey(normalizedContent string, qtype model.QuestionType, normalizedOptions []string) string {
	h := sha256.New()
	h.Write([]byte(normalizedContent))
	h.Write([]byte{'|'})
	h.Write([]byte(qtype.String()))
	h.Write([]byte{'|'})
	for i, o := range normalizedOptions {
		if i > 0 {
			h.Write([]byte{','})
		}
		h.Write([]byte(o))
	}
	return "qrouter:q:" + hex.EncodeToString(h.Sum(nil))
}
