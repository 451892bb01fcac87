package nats

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// errRemote marks errors reported by the worker in a reply.
var errRemote = errors.New("remote screening error")

type screenReply struct {
	Screening *domain.Screening `json:"screening,omitempty"`
	Error     string            `json:"error,omitempty"`
	Kind      string            `json:"kind,omitempty"`
}

func encodeReply(screening *domain.Screening, err error) []byte {
	reply := screenReply{Screening: screening}
	if err != nil {
		reply = screenReply{Error: err.Error(), Kind: domain.KindName(err)}
	}
	body, marshalErr := json.Marshal(reply)
	if marshalErr != nil {
		body, _ = json.Marshal(screenReply{Error: marshalErr.Error(), Kind: "internal"})
	}
	return body
}

// decodeReply restores the worker's error kind so callers can branch on it with
// domain.IsKind.
func decodeReply(body []byte) (*domain.Screening, error) {
	var reply screenReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("decode screening reply: %w", err)
	}
	if reply.Error != "" {
		cause := fmt.Errorf("%w: %s", errRemote, reply.Error)
		if kind := domain.KindFromName(reply.Kind); kind != nil {
			return nil, fmt.Errorf("%w: %w", kind, cause)
		}
		return nil, cause
	}
	if reply.Screening == nil {
		return nil, errors.New("decode screening reply: empty reply")
	}
	return reply.Screening, nil
}
