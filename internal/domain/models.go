// Package domain defines the persistence models for the blog/podcast content
// store: sites, blogs, posts, their attached media (images, videos, audio),
// image renditions, galleries, and the taxonomy tables used for faceted
// filtering. These types are mapped with GORM and form the relational layer
// that snapshots are materialized from.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User is a minimal author record. Only the fields needed to attribute a
// post are modeled; account management lives outside this subsystem.
type User struct {
	ID          int64  `json:"id"           gorm:"primaryKey"`
	Username    string `json:"username"     gorm:"type:varchar(150);not null;uniqueIndex"`
	DisplayName string `json:"display_name" gorm:"type:varchar(255);not null;default:''"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Site holds the hostname and canonical root URL used to build absolute
// page URLs for feeds and social markup.
type Site struct {
	ID       int64  `json:"id"       gorm:"primaryKey"`
	Hostname string `json:"hostname" gorm:"type:varchar(255);not null;uniqueIndex"`
	Name     string `json:"name"     gorm:"type:varchar(255);not null"`
	RootURL  string `json:"root_url" gorm:"type:varchar(255);not null"`
}

// TableName returns the database table name for Site.
func (Site) TableName() string { return "sites" }

// Blog is a container for posts. A blog may double as a podcast, in which
// case the feed-level metadata (author, owner email, explicit flag) is
// emitted into the podcast feed channel.
//
// TemplateBaseDir selects the template theme used to render the blog's
// pages; it is carried into cached payloads so a cache hit renders with the
// same theme the page was built with.
type Blog struct {
	ID              int64  `json:"id"                gorm:"primaryKey"`
	SiteID          int64  `json:"site_id"           gorm:"not null;index"`
	Slug            string `json:"slug"              gorm:"type:varchar(80);not null;uniqueIndex"`
	Title           string `json:"title"             gorm:"type:varchar(255);not null"`
	Description     string `json:"description"       gorm:"type:text;not null;default:''"`
	TemplateBaseDir string `json:"template_base_dir" gorm:"type:varchar(120);not null;default:''"`
	Language        string `json:"language"          gorm:"type:varchar(16);not null;default:'en'"`
	AuthorName      string `json:"author_name"       gorm:"type:varchar(255);not null;default:''"`
	OwnerEmail      string `json:"owner_email"       gorm:"type:varchar(255);not null;default:''"`
	Explicit        bool   `json:"explicit"          gorm:"not null;default:false"`

	Site Site `json:"-" gorm:"foreignKey:SiteID;references:ID"`
}

// TableName returns the database table name for Blog.
func (Blog) TableName() string { return "blogs" }

// Post is a blog entry or podcast episode. Body is an opaque structured
// content payload (a JSON list of blocks, see the blocks package); it is
// stored and cached unchanged and only interpreted at render time.
//
// Podcast episodes reference their main audio file through AudioID and
// carry the per-episode feed flags (explicit, keywords, block).
type Post struct {
	ID              int64          `json:"id"               gorm:"primaryKey"`
	BlogID          int64          `json:"blog_id"          gorm:"not null;index:idx_blog_posts,priority:1"`
	OwnerID         int64          `json:"owner_id"         gorm:"not null;index"`
	Slug            string         `json:"slug"             gorm:"type:varchar(255);not null;uniqueIndex"`
	Title           string         `json:"title"            gorm:"type:varchar(255);not null"`
	Body            string         `json:"body"             gorm:"type:text;not null;default:'[]'"`
	VisibleDate     time.Time      `json:"visible_date"     gorm:"not null;index:idx_blog_posts,priority:2"`
	CommentsEnabled bool           `json:"comments_enabled" gorm:"not null;default:true"`
	AudioID         *int64         `json:"audio_id,omitempty" gorm:"index"`
	Explicit        bool           `json:"explicit"         gorm:"not null;default:false"`
	Keywords        string         `json:"keywords"         gorm:"type:varchar(255);not null;default:''"`
	Block           bool           `json:"block"            gorm:"not null;default:false"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-"                gorm:"index"`

	Blog  Blog   `json:"-" gorm:"foreignKey:BlogID;references:ID"`
	Owner User   `json:"-" gorm:"foreignKey:OwnerID;references:ID"`
	Audio *Audio `json:"-" gorm:"foreignKey:AudioID;references:ID"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string { return "posts" }

// Image is an uploaded source image. Size variants are stored separately as
// Rendition rows and are never recomputed by this subsystem.
type Image struct {
	ID       int64  `json:"id"        gorm:"primaryKey"`
	Title    string `json:"title"     gorm:"type:varchar(255);not null"`
	AltText  string `json:"alt_text"  gorm:"type:varchar(255);not null;default:''"`
	FilePath string `json:"file_path" gorm:"type:varchar(512);not null"`
	Width    int    `json:"width"     gorm:"not null;default:0"`
	Height   int    `json:"height"    gorm:"not null;default:0"`
}

// TableName returns the database table name for Image.
func (Image) TableName() string { return "images" }

// Rendition is a precomputed variant of an image, content-addressed by
// (ImageID, FilterSpec). Rows are append-only: a rendition is written once
// by the media pipeline and read forever after.
type Rendition struct {
	ID         int64  `json:"id"          gorm:"primaryKey"`
	ImageID    int64  `json:"image_id"    gorm:"not null;index;uniqueIndex:ux_image_filter,priority:1"`
	FilterSpec string `json:"filter_spec" gorm:"type:varchar(120);not null;uniqueIndex:ux_image_filter,priority:2"`
	FilePath   string `json:"file_path"   gorm:"type:varchar(512);not null"`
	Width      int    `json:"width"       gorm:"not null;default:0"`
	Height     int    `json:"height"      gorm:"not null;default:0"`

	Image Image `json:"-" gorm:"foreignKey:ImageID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for Rendition.
func (Rendition) TableName() string { return "renditions" }

// Video is an uploaded video file with an optional poster frame.
type Video struct {
	ID           int64   `json:"id"            gorm:"primaryKey"`
	Title        string  `json:"title"         gorm:"type:varchar(255);not null"`
	FilePath     string  `json:"file_path"     gorm:"type:varchar(512);not null"`
	PosterPath   string  `json:"poster_path"   gorm:"type:varchar(512);not null;default:''"`
	PosterOffset float64 `json:"poster_offset" gorm:"not null;default:0"`
	Width        int     `json:"width"         gorm:"not null;default:0"`
	Height       int     `json:"height"        gorm:"not null;default:0"`
}

// TableName returns the database table name for Video.
func (Video) TableName() string { return "videos" }

// Audio is an uploaded audio file. Duration is in seconds as reported by
// the transcoding pipeline.
type Audio struct {
	ID       int64   `json:"id"        gorm:"primaryKey"`
	Title    string  `json:"title"     gorm:"type:varchar(255);not null"`
	FilePath string  `json:"file_path" gorm:"type:varchar(512);not null"`
	Duration float64 `json:"duration"  gorm:"not null;default:0"`
}

// TableName returns the database table name for Audio.
func (Audio) TableName() string { return "audios" }

// Transcript is a text transcript attached to an audio file, linked from
// podcast feed entries.
type Transcript struct {
	ID       int64  `json:"id"        gorm:"primaryKey"`
	AudioID  int64  `json:"audio_id"  gorm:"not null;uniqueIndex"`
	Format   string `json:"format"    gorm:"type:varchar(32);not null;default:'text/vtt'"`
	FilePath string `json:"file_path" gorm:"type:varchar(512);not null"`

	Audio Audio `json:"-" gorm:"foreignKey:AudioID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for Transcript.
func (Transcript) TableName() string { return "transcripts" }

// Gallery groups a set of images attached to a post.
type Gallery struct {
	ID     int64  `json:"id"      gorm:"primaryKey"`
	PostID int64  `json:"post_id" gorm:"not null;index"`
	Title  string `json:"title"   gorm:"type:varchar(255);not null;default:''"`

	Post Post `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for Gallery.
func (Gallery) TableName() string { return "galleries" }

// GalleryImage orders images within a gallery.
type GalleryImage struct {
	ID        int64 `json:"id"         gorm:"primaryKey"`
	GalleryID int64 `json:"gallery_id" gorm:"not null;index:idx_gallery_sort,priority:1"`
	ImageID   int64 `json:"image_id"   gorm:"not null;index"`
	SortOrder int   `json:"sort_order" gorm:"not null;default:0;index:idx_gallery_sort,priority:2"`

	Gallery Gallery `json:"-" gorm:"foreignKey:GalleryID;references:ID;constraint:OnDelete:CASCADE"`
	Image   Image   `json:"-" gorm:"foreignKey:ImageID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for GalleryImage.
func (GalleryImage) TableName() string { return "gallery_images" }

// PostImage attaches an image directly to a post, ordered by SortOrder.
type PostImage struct {
	ID        int64 `json:"id"         gorm:"primaryKey"`
	PostID    int64 `json:"post_id"    gorm:"not null;index:idx_post_images,priority:1"`
	ImageID   int64 `json:"image_id"   gorm:"not null;index"`
	SortOrder int   `json:"sort_order" gorm:"not null;default:0;index:idx_post_images,priority:2"`

	Post  Post  `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Image Image `json:"-" gorm:"foreignKey:ImageID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for PostImage.
func (PostImage) TableName() string { return "post_images" }

// PostVideo attaches a video directly to a post.
type PostVideo struct {
	ID        int64 `json:"id"         gorm:"primaryKey"`
	PostID    int64 `json:"post_id"    gorm:"not null;index:idx_post_videos,priority:1"`
	VideoID   int64 `json:"video_id"   gorm:"not null;index"`
	SortOrder int   `json:"sort_order" gorm:"not null;default:0;index:idx_post_videos,priority:2"`

	Post  Post  `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Video Video `json:"-" gorm:"foreignKey:VideoID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for PostVideo.
func (PostVideo) TableName() string { return "post_videos" }

// PostAudio attaches an audio file directly to a post (distinct from the
// podcast episode audio referenced by Post.AudioID).
type PostAudio struct {
	ID        int64 `json:"id"         gorm:"primaryKey"`
	PostID    int64 `json:"post_id"    gorm:"not null;index:idx_post_audios,priority:1"`
	AudioID   int64 `json:"audio_id"   gorm:"not null;index"`
	SortOrder int   `json:"sort_order" gorm:"not null;default:0;index:idx_post_audios,priority:2"`

	Post  Post  `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Audio Audio `json:"-" gorm:"foreignKey:AudioID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for PostAudio.
func (PostAudio) TableName() string { return "post_audios" }

// Category is a curated taxonomy term used for faceted filtering.
type Category struct {
	ID   int64  `json:"id"   gorm:"primaryKey"`
	Slug string `json:"slug" gorm:"type:varchar(80);not null;uniqueIndex"`
	Name string `json:"name" gorm:"type:varchar(120);not null"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Tag is a free-form taxonomy term used for faceted filtering.
type Tag struct {
	ID   int64  `json:"id"   gorm:"primaryKey"`
	Slug string `json:"slug" gorm:"type:varchar(80);not null;uniqueIndex"`
	Name string `json:"name" gorm:"type:varchar(120);not null"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }

// PostCategory joins posts to categories.
type PostCategory struct {
	ID         int64 `json:"id"          gorm:"primaryKey"`
	PostID     int64 `json:"post_id"     gorm:"not null;index;uniqueIndex:ux_post_category,priority:1"`
	CategoryID int64 `json:"category_id" gorm:"not null;index;uniqueIndex:ux_post_category,priority:2"`
}

// TableName returns the database table name for PostCategory.
func (PostCategory) TableName() string { return "post_categories" }

// PostTag joins posts to tags.
type PostTag struct {
	ID     int64 `json:"id"      gorm:"primaryKey"`
	PostID int64 `json:"post_id" gorm:"not null;index;uniqueIndex:ux_post_tag,priority:1"`
	TagID  int64 `json:"tag_id"  gorm:"not null;index;uniqueIndex:ux_post_tag,priority:2"`
}

// TableName returns the database table name for PostTag.
func (PostTag) TableName() string { return "post_tags" }
