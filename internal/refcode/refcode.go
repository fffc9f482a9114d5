// Package refcode turns numeric booking IDs into short human-readable
// references ("RP-8K3D") for WhatsApp messages and payment proofs.
package refcode

import (
	"fmt"
	"strings"

	hashids "github.com/speps/go-hashids/v2"
)

const (
	prefix    = "RP-"
	minLength = 4
	alphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

type Coder struct {
	h *hashids.HashID
}

func New(salt string) (*Coder, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minLength
	data.Alphabet = alphabet

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("init hashids: %w", err)
	}
	return &Coder{h: h}, nil
}

func (c *Coder) Encode(id int64) (string, error) {
	code, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", err
	}
	return prefix + code, nil
}

func (c *Coder) Decode(ref string) (int64, error) {
	code := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(ref)), prefix)
	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil {
		return 0, fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	if len(ids) != 1 {
		return 0, fmt.Errorf("invalid reference %q", ref)
	}
	return ids[0], nil
}
