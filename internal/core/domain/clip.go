package domain

import (
	"time"
)

type ClipID int64
type ClientID string

// Clip is the persisted record of one uploaded highlight.
type Clip struct {
	ID         ClipID    `json:"id"`
	Title      string    `json:"title"`
	Game       string    `json:"game"`
	User       string    `json:"user"`
	VideoURL   string    `json:"videoUrl"`
	Views      int64     `json:"views"`
	Likes      int64     `json:"likes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// SortOrder selects how clip listings are ordered.
type SortOrder string

const (
	SortLatest  SortOrder = "latest"
	SortViews   SortOrder = "views"
	SortPopular SortOrder = "popular"
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Subscription struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
