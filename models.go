package devlink

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. The password hash never leaves the server,
// every handler that returns a user relies on the json:"-" tag here.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Avatar        string     `bun:"avatar" json:"avatar,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// SocialLinks is embedded in the profile document.
type SocialLinks struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Experience is one entry of the profile experience list. Dates are kept as
// the client-submitted strings, the server orders entries by position, not
// by parsing dates.
type Experience struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location,omitempty"`
	From        string    `json:"from"`
	To          string    `json:"to,omitempty"`
	Current     bool      `json:"current"`
	Description string    `json:"description,omitempty"`
}

// Education is one entry of the profile education list.
type Education struct {
	ID           uuid.UUID `json:"id"`
	School       string    `json:"school"`
	Degree       string    `json:"degree"`
	FieldOfStudy string    `json:"fieldofstudy"`
	From         string    `json:"from"`
	To           string    `json:"to,omitempty"`
	Current      bool      `json:"current"`
	Description  string    `json:"description,omitempty"`
}

// Profile is the developer profile, one per user. The ordered lists live
// inside the row as JSON so a profile behaves as a single document: list
// mutations are a read-modify-write of one row.
type Profile struct {
	bun.BaseModel  `bun:"table:profiles,alias:prf"`
	ID             uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID         uuid.UUID    `bun:"user_id,notnull,unique,type:uuid" json:"user_id,omitempty"`
	User           *User        `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Company        string       `bun:"company" json:"company,omitempty"`
	Website        string       `bun:"website" json:"website,omitempty"`
	Location       string       `bun:"location" json:"location,omitempty"`
	Status         string       `bun:"status,notnull" json:"status,omitempty"`
	Skills         []string     `bun:"skills,type:jsonb" json:"skills"`
	Bio            string       `bun:"bio" json:"bio,omitempty"`
	GithubUsername string       `bun:"github_username" json:"github_username,omitempty"`
	Social         SocialLinks  `bun:"social,type:jsonb" json:"social,omitempty"`
	Experience     []Experience `bun:"experience,type:jsonb" json:"experience"`
	Education      []Education  `bun:"education,type:jsonb" json:"education"`
	CreatedAt      *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AddExperience inserts the entry at the head of the list, most recent first.
func (p *Profile) AddExperience(exp Experience) {
	p.Experience = append([]Experience{exp}, p.Experience...)
}

// RemoveExperience removes the entry with the given id. Removing an id that
// is not present is a no-op, callers treat the delete as idempotent.
func (p *Profile) RemoveExperience(id uuid.UUID) bool {
	for i, exp := range p.Experience {
		if exp.ID == id {
			p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)
			return true
		}
	}
	return false
}

// AddEducation inserts the entry at the head of the list.
func (p *Profile) AddEducation(edu Education) {
	p.Education = append([]Education{edu}, p.Education...)
}

// RemoveEducation removes the entry with the given id, no-op when absent.
func (p *Profile) RemoveEducation(id uuid.UUID) bool {
	for i, edu := range p.Education {
		if edu.ID == id {
			p.Education = append(p.Education[:i], p.Education[i+1:]...)
			return true
		}
	}
	return false
}

// Like marks that a user liked a post. One entry per user, enforced by
// Post.AddLike.
type Like struct {
	UserID uuid.UUID `json:"user"`
}

// Comment is one entry of the post comment list. Author name and avatar are
// denormalized at creation time, they do not track later account changes.
type Comment struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user"`
	Name   string    `json:"name,omitempty"`
	Avatar string    `json:"avatar,omitempty"`
	Text   string    `json:"text"`
	Date   time.Time `json:"date"`
}

// Post is a published text post. Likes and comments are embedded JSON lists,
// the post row is the unit of write atomicity.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user,omitempty"`
	Name          string     `bun:"name" json:"name,omitempty"`
	Avatar        string     `bun:"avatar" json:"avatar,omitempty"`
	Text          string     `bun:"text,notnull" json:"text"`
	Likes         []Like     `bun:"likes,type:jsonb" json:"likes"`
	Comments      []Comment  `bun:"comments,type:jsonb" json:"comments"`
	Date          *time.Time `bun:"date,nullzero,default:current_timestamp" json:"date,omitempty"`
}

// IsOwner reports whether the given user created the post.
func (p *Post) IsOwner(userID uuid.UUID) bool {
	return p.UserID == userID
}

// HasLike reports whether the user already liked the post.
func (p *Post) HasLike(userID uuid.UUID) bool {
	for _, like := range p.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}

// AddLike records a like, at most one per user. Returns false when the user
// already liked the post.
func (p *Post) AddLike(userID uuid.UUID) bool {
	if p.HasLike(userID) {
		return false
	}
	p.Likes = append([]Like{{UserID: userID}}, p.Likes...)
	return true
}

// RemoveLike removes the user's like. Returns false when there was none.
func (p *Post) RemoveLike(userID uuid.UUID) bool {
	for i, like := range p.Likes {
		if like.UserID == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return true
		}
	}
	return false
}

// AddComment inserts the comment at the head of the list.
func (p *Post) AddComment(comment Comment) {
	p.Comments = append([]Comment{comment}, p.Comments...)
}

// FindComment returns the comment with the given id.
func (p *Post) FindComment(id uuid.UUID) (Comment, bool) {
	for _, comment := range p.Comments {
		if comment.ID == id {
			return comment, true
		}
	}
	return Comment{}, false
}

// RemoveComment removes the comment with the given id.
func (p *Post) RemoveComment(id uuid.UUID) bool {
	for i, comment := range p.Comments {
		if comment.ID == id {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}
