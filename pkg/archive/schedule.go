package archive

import (
	"path/filepath"
	"time"

	"postarchive/pkg/fetch"
	"postarchive/pkg/models"
	"postarchive/pkg/pathing"
)

// ImageTask is one image download placed on the run's global schedule
type ImageTask struct {
	Seq       int
	PostIndex int
	PostSlug  string
	URL       string
	Delay     time.Duration
}

// Schedule walks posts in order, then each post's image URLs in order, and
// gives every image the next sequence number and a delay of Seq*increment.
// The sequence runs across the whole collection and is never reset per post.
// Duplicate URLs are scheduled independently.
func Schedule(posts []models.Post, increment time.Duration) []ImageTask {
	total := 0
	for _, post := range posts {
		total += len(post.Meta.ImageURLs)
	}

	tasks := make([]ImageTask, 0, total)
	for i, post := range posts {
		for _, u := range post.Meta.ImageURLs {
			seq := len(tasks)
			tasks = append(tasks, ImageTask{
				Seq:       seq,
				PostIndex: i,
				PostSlug:  post.Meta.Slug,
				URL:       u,
				Delay:     time.Duration(seq) * increment,
			})
		}
	}
	return tasks
}

// PlannedPost is a post whose target paths resolved
type PlannedPost struct {
	Index int // position in the input
	Post  models.Post
	Dir   string
	File  string
}

// SkippedPost is a post that cannot be placed, usually for want of a date
type SkippedPost struct {
	Index int
	Slug  string
	Err   error
}

// Plan is the resolved layout and download schedule for a set of posts
type Plan struct {
	Posts   []PlannedPost
	Skipped []SkippedPost
	Tasks   []ImageTask // PostIndex refers to Posts
}

// NewPlan resolves every post's paths and schedules the images of the posts
// that resolved. Skipped posts take no sequence numbers.
func NewPlan(posts []models.Post, opts pathing.Options, increment time.Duration) *Plan {
	plan := &Plan{}
	for i, post := range posts {
		dir, file, err := pathing.ResolvePath(post, opts)
		if err != nil {
			plan.Skipped = append(plan.Skipped, SkippedPost{Index: i, Slug: post.Meta.Slug, Err: err})
			continue
		}
		plan.Posts = append(plan.Posts, PlannedPost{Index: i, Post: post, Dir: dir, File: file})
	}

	resolved := make([]models.Post, len(plan.Posts))
	for i, p := range plan.Posts {
		resolved[i] = p.Post
	}
	plan.Tasks = Schedule(resolved, increment)
	return plan
}

// ImagePath is where task's image is saved
func (p *Plan) ImagePath(task ImageTask) string {
	return filepath.Join(pathing.ImagesDir(p.Posts[task.PostIndex].Dir), fetch.FilenameFromURL(task.URL))
}
