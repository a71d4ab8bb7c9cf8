package group

import (
	"fmt"

	hashids "github.com/speps/go-hashids/v2"
)

const inviteCodeMinLength = 8

// InviteCodec mints and resolves the opaque invite codes carried by
// wesplit://join/<code> links. Codes are hashids over the invite row id,
// so they stay alphanumeric and never expose the raw sequence.
type InviteCodec struct {
	h *hashids.HashID
}

func NewInviteCodec(salt string) (*InviteCodec, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = inviteCodeMinLength

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("building invite codec: %w", err)
	}

	return &InviteCodec{h: h}, nil
}

func (c *InviteCodec) Encode(inviteID int64) (string, error) {
	code, err := c.h.EncodeInt64([]int64{inviteID})
	if err != nil {
		return "", fmt.Errorf("encoding invite %d: %w", inviteID, err)
	}
	return code, nil
}

func (c *InviteCodec) Decode(code string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 {
		return 0, ErrBadInviteCode
	}
	return ids[0], nil
}
