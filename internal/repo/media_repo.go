// Package repo implements the data access layer over the relational content
// store, backed by GORM. This file provides the batched media fetches the
// snapshot builder runs: one query per related entity type for a whole set
// of posts, never one query per post.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/dkarlsen/go-blog-cache/internal/domain"
)

// postMediaPair is one row of a post↔media join table.
type postMediaPair struct {
	PostID  int64
	MediaID int64
}

// UsersByID returns the users for a set of ids, keyed by id.
func UsersByID(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]domain.User, error) {
	out := make(map[int64]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}

// DirectImagePairs returns (post id, image id) pairs for images attached
// directly to the given posts, in per-post sort order.
func DirectImagePairs(ctx context.Context, db *gorm.DB, postIDs []int64) ([][2]int64, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var rows []postMediaPair
	err := db.WithContext(ctx).
		Table("post_images").
		Select("post_id, image_id AS media_id").
		Where("post_id IN ?", postIDs).
		Order("post_id, sort_order, id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPairs(rows), nil
}

// GalleryImagePairs returns (post id, image id) pairs for images attached
// through a gallery of the given posts, in gallery sort order.
func GalleryImagePairs(ctx context.Context, db *gorm.DB, postIDs []int64) ([][2]int64, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var rows []postMediaPair
	err := db.WithContext(ctx).
		Table("gallery_images gi").
		Select("g.post_id AS post_id, gi.image_id AS media_id").
		Joins("JOIN galleries g ON g.id = gi.gallery_id").
		Where("g.post_id IN ?", postIDs).
		Order("g.post_id, g.id, gi.sort_order, gi.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPairs(rows), nil
}

// VideoPairs returns (post id, video id) pairs for the given posts.
func VideoPairs(ctx context.Context, db *gorm.DB, postIDs []int64) ([][2]int64, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var rows []postMediaPair
	err := db.WithContext(ctx).
		Table("post_videos").
		Select("post_id, video_id AS media_id").
		Where("post_id IN ?", postIDs).
		Order("post_id, sort_order, id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPairs(rows), nil
}

// AudioPairs returns (post id, audio id) pairs for audio files attached
// directly to the given posts.
func AudioPairs(ctx context.Context, db *gorm.DB, postIDs []int64) ([][2]int64, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var rows []postMediaPair
	err := db.WithContext(ctx).
		Table("post_audios").
		Select("post_id, audio_id AS media_id").
		Where("post_id IN ?", postIDs).
		Order("post_id, sort_order, id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPairs(rows), nil
}

// ImagesByID returns the images for a set of ids, keyed by id.
func ImagesByID(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]domain.Image, error) {
	out := make(map[int64]domain.Image, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Image
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, img := range rows {
		out[img.ID] = img
	}
	return out, nil
}

// VideosByID returns the videos for a set of ids, keyed by id.
func VideosByID(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]domain.Video, error) {
	out := make(map[int64]domain.Video, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Video
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, v := range rows {
		out[v.ID] = v
	}
	return out, nil
}

// AudiosByID returns the audio files for a set of ids, keyed by id.
func AudiosByID(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]domain.Audio, error) {
	out := make(map[int64]domain.Audio, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Audio
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, a := range rows {
		out[a.ID] = a
	}
	return out, nil
}

// RenditionsForImages returns every already-computed rendition of the given
// images, keyed by image id. Per-image order is stable (insertion order).
func RenditionsForImages(ctx context.Context, db *gorm.DB, imageIDs []int64) (map[int64][]domain.Rendition, error) {
	out := make(map[int64][]domain.Rendition, len(imageIDs))
	if len(imageIDs) == 0 {
		return out, nil
	}
	var rows []domain.Rendition
	err := db.WithContext(ctx).
		Where("image_id IN ?", imageIDs).
		Order("image_id, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ImageID] = append(out[r.ImageID], r)
	}
	return out, nil
}

// TranscriptsForAudios returns transcripts keyed by audio id. Audio files
// without a transcript are simply absent from the result.
func TranscriptsForAudios(ctx context.Context, db *gorm.DB, audioIDs []int64) (map[int64]domain.Transcript, error) {
	out := make(map[int64]domain.Transcript, len(audioIDs))
	if len(audioIDs) == 0 {
		return out, nil
	}
	var rows []domain.Transcript
	if err := db.WithContext(ctx).Where("audio_id IN ?", audioIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, t := range rows {
		out[t.AudioID] = t
	}
	return out, nil
}

func toPairs(rows []postMediaPair) [][2]int64 {
	pairs := make([][2]int64, 0, len(rows))
	for _, r := range rows {
		pairs = append(pairs, [2]int64{r.PostID, r.MediaID})
	}
	return pairs
}
