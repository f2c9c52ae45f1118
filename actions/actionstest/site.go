// Package actionstest builds a fake social site on top of browsertest.Page.
// Clicking like, follow and comment controls mutates the site state the way
// the real site does, so executor confirmations succeed.
package actionstest

import (
	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/browser/browsertest"
	"github.com/nikshitha/social-warmup/config"
	"github.com/nikshitha/social-warmup/selectors"
)

// Profile describes one fake profile page.
type Profile struct {
	Username     string
	Posts        int
	Following    bool
	AlreadyLiked []int
	// NoFollowButton removes the follow button.
	NoFollowButton bool
	// Unconfirmed makes clicks register without changing page state.
	Unconfirmed bool
	// Broken renders the page without a profile header.
	Broken bool
}

// Site holds the state shared across navigations.
type Site struct {
	Page     *browsertest.Page
	Followed map[string]bool
	Liked    map[string]map[int]bool
	Comments map[string][]string

	doc      *config.Document
	profiles map[string]*Profile
}

// Sel returns the primary selector of a logical key.
func Sel(key string) browser.Selector {
	return selectors.DefaultSpecs()[key].Primary
}

// NewSite installs a home page with feedPosts posts.
func NewSite(page *browsertest.Page, doc *config.Document, feedPosts int) *Site {
	s := &Site{
		Page:     page,
		Followed: map[string]bool{},
		Liked:    map[string]map[int]bool{},
		Comments: map[string][]string{},
		doc:      doc,
		profiles: map[string]*Profile{},
	}
	page.Site(doc.HomeURL(), func(p *browsertest.Page) {
		p.Add(Sel(selectors.HomeFeed), browsertest.NewElement("main", "role", "main"))
		for i := 0; i < feedPosts; i++ {
			p.Add(Sel(selectors.Post), s.post("", i, false))
		}
	})
	return s
}

// AddProfile registers a profile page.
func (s *Site) AddProfile(profile Profile) {
	pr := profile
	s.profiles[pr.Username] = &pr
	if pr.Following {
		s.Followed[pr.Username] = true
	}
	for _, idx := range pr.AlreadyLiked {
		s.markLiked(pr.Username, idx)
	}

	s.Page.Site(s.doc.ProfileURL(pr.Username), func(p *browsertest.Page) {
		if pr.Broken {
			return
		}
		p.Add(Sel(selectors.ProfileHeader), browsertest.NewElement("section"))

		if s.Followed[pr.Username] {
			p.Add(Sel(selectors.FollowingIndicator), browsertest.NewElement("button", "textContent", "Following"))
		} else if !pr.NoFollowButton {
			follow := browsertest.NewElement("button", "textContent", "Follow")
			follow.OnClick = func(p *browsertest.Page, el *browsertest.Element) error {
				if pr.Unconfirmed {
					return nil
				}
				s.Followed[pr.Username] = true
				p.Remove(Sel(selectors.FollowButton), el)
				p.Add(Sel(selectors.FollowingIndicator), browsertest.NewElement("button", "textContent", "Following"))
				return nil
			}
			p.Add(Sel(selectors.FollowButton), follow)
		}

		for i := 0; i < pr.Posts; i++ {
			p.Add(Sel(selectors.Post), s.post(pr.Username, i, pr.Unconfirmed))
		}
	})
}

// LikeCount returns the number of liked posts of owner, including those
// liked before the test started.
func (s *Site) LikeCount(owner string) int {
	return len(s.Liked[owner])
}

// TotalLikes sums LikeCount over every profile.
func (s *Site) TotalLikes() int {
	n := 0
	for _, liked := range s.Liked {
		n += len(liked)
	}
	return n
}

func (s *Site) markLiked(owner string, idx int) {
	if s.Liked[owner] == nil {
		s.Liked[owner] = map[int]bool{}
	}
	s.Liked[owner][idx] = true
}

func (s *Site) post(owner string, idx int, unconfirmed bool) *browsertest.Element {
	post := browsertest.NewElement("article")

	if s.Liked[owner][idx] {
		post.Add(Sel(selectors.UnlikeButton), browsertest.NewElement("svg", "aria-label", "Unlike"))
	} else {
		like := browsertest.NewElement("svg", "aria-label", "Like")
		like.OnClick = func(_ *browsertest.Page, _ *browsertest.Element) error {
			if unconfirmed {
				return nil
			}
			s.markLiked(owner, idx)
			post.Add(Sel(selectors.UnlikeButton), browsertest.NewElement("svg", "aria-label", "Unlike"))
			return nil
		}
		post.Add(Sel(selectors.LikeButton), like)
	}

	box := browsertest.NewElement("textarea")
	post.Add(Sel(selectors.CommentBox), box)

	submit := browsertest.NewElement("div", "role", "button", "textContent", "Post")
	submit.OnClick = func(_ *browsertest.Page, _ *browsertest.Element) error {
		if unconfirmed {
			return nil
		}
		text := box.Attrs["value"]
		s.Comments[owner] = append(s.Comments[owner], text)
		post.Add(Sel(selectors.CommentText), browsertest.NewElement("span", "textContent", text))
		return nil
	}
	post.Add(Sel(selectors.PostCommentButton), submit)

	return post
}
