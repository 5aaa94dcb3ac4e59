package model

import "time"

// GalleryImage 相册图片（URL 指向对象存储）
type GalleryImage struct {
	ID        string    `json:"id" bson:"_id"`
	URL       string    `json:"url" bson:"url"`
	AltText   string    `json:"alt_text" bson:"alt_text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
