package repository

import (
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/meetvoice/message-history-service/internal/domain"
)

var errMalformedDocument = errors.New("malformed document")

// normalizeMessage converts a raw message document into the canonical
// domain.Message. Two historical shapes exist in the collection:
//
//	{from, to, message, timestamp, read}
//	{sender, recipient, content, message_type, timestamp, read, read_at}
//
// Timestamps are stored either as RFC3339 strings or as native BSON
// datetimes; both normalize to the string form so the fold and sort logic
// only ever compares strings.
func normalizeMessage(doc bson.M) (domain.Message, error) {
	sender := stringField(doc, "sender", "from")
	recipient := stringField(doc, "recipient", "to")
	if sender == "" || recipient == "" {
		return domain.Message{}, errMalformedDocument
	}

	msgType := stringField(doc, "message_type")
	if msgType == "" {
		msgType = domain.DefaultMessageType
	}

	read, _ := doc["read"].(bool)

	return domain.Message{
		ID:          objectID(doc["_id"]),
		Sender:      sender,
		Recipient:   recipient,
		Content:     stringField(doc, "content", "message"),
		MessageType: msgType,
		Timestamp:   timestampField(doc["timestamp"]),
		Read:        read,
		ReadAt:      stringField(doc, "read_at"),
	}, nil
}

// normalizeFragment converts one entry of a contacts document into a
// ProfileFragment. Every sub-field is required; an incomplete entry is
// reported as not ok and dropped by the caller.
func normalizeFragment(raw bson.M) (domain.ProfileFragment, bool) {
	frag := domain.ProfileFragment{
		Username:  stringField(raw, "username"),
		FirstName: stringField(raw, "first_name"),
		Age:       scalarField(raw, "age"),
		Photo:     stringField(raw, "photo"),
	}
	if frag.Username == "" || frag.FirstName == "" || frag.Age == "" || frag.Photo == "" {
		return domain.ProfileFragment{}, false
	}
	return frag, true
}

func stringField(doc bson.M, keys ...string) string {
	for _, key := range keys {
		if s, ok := doc[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// scalarField reads a field that historically holds either a string (a
// date of birth) or a number (an age), returning its string form.
func scalarField(doc bson.M, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

func timestampField(v interface{}) string {
	switch ts := v.(type) {
	case string:
		return ts
	case bson.DateTime:
		return ts.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return ts.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

func objectID(v interface{}) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return ""
	}
}
