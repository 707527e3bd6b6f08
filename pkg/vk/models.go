package vk

import "encoding/json"

// envelope is the outer shape of every API response
type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *APIError       `json:"error"`
}

// APIError is the error object returned in place of a response
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

// WallPage is one page of a wall listing
type WallPage struct {
	Count int    `json:"count"`
	Items []Post `json:"items"`
}

// Post is a raw wall post. A post without attachments decodes with a nil slice.
type Post struct {
	ID          int64        `json:"id"`
	OwnerID     int64        `json:"owner_id"`
	Date        int64        `json:"date"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a raw attachment; only the field named by Type is set
type Attachment struct {
	Type  string `json:"type"`
	Photo *Photo `json:"photo,omitempty"`
	Audio *Audio `json:"audio,omitempty"`
	Video *Video `json:"video,omitempty"`
}

// Photo carries every size variant the API offers
type Photo struct {
	ID      int64       `json:"id"`
	OwnerID int64       `json:"owner_id"`
	Sizes   []PhotoSize `json:"sizes"`
}

type PhotoSize struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Audio struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// Video is returned both inside posts (without Player) and by video.get
type Video struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	AccessKey string `json:"access_key"`
	Title     string `json:"title"`
	Player    string `json:"player"`
}

type videoList struct {
	Count int     `json:"count"`
	Items []Video `json:"items"`
}

// ResolvedName is the result of utils.resolveScreenName
type ResolvedName struct {
	Type     string `json:"type"`
	ObjectID int64  `json:"object_id"`
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// WikiPage is a wiki page fetched with need_html=1
type WikiPage struct {
	ID      int64  `json:"id"`
	GroupID int64  `json:"group_id"`
	Title   string `json:"title"`
	HTML    string `json:"html"`
	ViewURL string `json:"view_url"`
}
