package farcaster

import "time"

// Message type tags used by hub endpoints. Only "add" messages represent
// items that still exist; remove messages are tombstones.
const (
	MessageTypeCastAdd = "MESSAGE_TYPE_CAST_ADD"
	MessageTypeLinkAdd = "MESSAGE_TYPE_LINK_ADD"
)

// User data record types returned by userDataByFid.
const (
	UserDataTypeUsername = "USER_DATA_TYPE_USERNAME"
	UserDataTypeDisplay  = "USER_DATA_TYPE_DISPLAY"
	UserDataTypeBio      = "USER_DATA_TYPE_BIO"
	UserDataTypeURL      = "USER_DATA_TYPE_URL"
)

// Message is a single hub protocol message envelope.
type Message struct {
	Hash string      `json:"hash"`
	Data MessageData `json:"data"`
}

// MessageData is the typed payload of a hub message. Timestamp counts
// seconds since the Farcaster epoch, not the Unix epoch.
type MessageData struct {
	Type         string        `json:"type"`
	FID          uint64        `json:"fid"`
	Timestamp    int64         `json:"timestamp"`
	CastAddBody  *CastAddBody  `json:"castAddBody,omitempty"`
	LinkBody     *LinkBody     `json:"linkBody,omitempty"`
	UserDataBody *UserDataBody `json:"userDataBody,omitempty"`
}

// CastAddBody carries the text of a cast and its optional parent.
type CastAddBody struct {
	Text         string  `json:"text"`
	ParentCastID *CastID `json:"parentCastId,omitempty"`
	Embeds       []Embed `json:"embeds,omitempty"`
}

// CastID identifies a cast by author and hash.
type CastID struct {
	FID  uint64 `json:"fid"`
	Hash string `json:"hash"`
}

// Embed is a URL attached to a cast.
type Embed struct {
	URL string `json:"url"`
}

// LinkBody describes a social-graph edge such as a follow.
type LinkBody struct {
	Type      string `json:"type"`
	TargetFID uint64 `json:"targetFid"`
}

// UserDataBody is one profile field record.
type UserDataBody struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Cast is the collected form of a cast-add message. Timestamp keeps the raw
// Farcaster-epoch seconds so bucketing can be cross-checked against it.
type Cast struct {
	Hash      string `json:"hash"`
	FID       uint64 `json:"fid"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Time converts the cast's raw timestamp into a UTC instant.
func (c Cast) Time() time.Time {
	return EpochTime(c.Timestamp)
}

// Profile is a user profile assembled from userDataByFid records.
type Profile struct {
	FID         uint64 `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Website     string `json:"website,omitempty"`
}

// User is a hydrated account summary from the bulk endpoint.
type User struct {
	FID           uint64 `json:"fid"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	FollowerCount int    `json:"follower_count"`
	Bio           string `json:"bio,omitempty"`
}

// TrendingCast is one entry of the trending feed.
type TrendingCast struct {
	Hash           string `json:"hash"`
	Text           string `json:"text"`
	AuthorFID      uint64 `json:"author_fid"`
	AuthorUsername string `json:"author_username"`
	ReplyCount     int    `json:"reply_count"`
}
