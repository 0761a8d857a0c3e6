package chat

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/valyala/fastjson"
)

const maxMessageRunes = 10000

// In-band replies for frames that cannot be delivered. The connection stays
// open after either.
const (
	replyInvalidFrame      = "Invalid message format"
	replyRecipientNotFound = "Recipient does not exist"
)

var errMalformedFrame = errors.New("malformed chat frame")

type inboundFrame struct {
	RecipientID int64
	Message     string
}

// parseFrame validates {"recipient_id": "2", "message": "..."}. recipient_id
// may also be a JSON number.
func parseFrame(pool *fastjson.ParserPool, data []byte) (inboundFrame, error) {
	p := pool.Get()
	defer pool.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil || v.Type() != fastjson.TypeObject {
		return inboundFrame{}, errMalformedFrame
	}

	recipientID, err := recipient(v.Get("recipient_id"))
	if err != nil {
		return inboundFrame{}, err
	}

	mv := v.Get("message")
	if mv == nil || mv.Type() != fastjson.TypeString {
		return inboundFrame{}, errMalformedFrame
	}
	message := string(mv.GetStringBytes())
	if strings.TrimSpace(message) == "" || utf8.RuneCountInString(message) > maxMessageRunes {
		return inboundFrame{}, errMalformedFrame
	}
	// Postgres text columns reject NUL and invalid UTF-8.
	if !utf8.ValidString(message) || strings.ContainsRune(message, 0) {
		return inboundFrame{}, errMalformedFrame
	}

	return inboundFrame{RecipientID: recipientID, Message: message}, nil
}

func recipient(v *fastjson.Value) (int64, error) {
	if v == nil {
		return 0, errMalformedFrame
	}

	var (
		id  int64
		err error
	)
	switch v.Type() {
	case fastjson.TypeString:
		id, err = strconv.ParseInt(string(v.GetStringBytes()), 10, 64)
	case fastjson.TypeNumber:
		id, err = v.Int64()
	default:
		return 0, errMalformedFrame
	}
	if err != nil || id < 1 {
		return 0, errMalformedFrame
	}
	return id, nil
}
