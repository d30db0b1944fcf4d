package models

import "strings"

// MediaRef is a media-bearing payload field. It holds either a local device
// URI (capture not yet uploaded) or a remote URL. On the wire it is the bare
// string the backend expects; locality is decided by the URL scheme, so the
// rewrite step is a total walk over every media field rather than ad-hoc
// string matching.
type MediaRef string

// IsZero reports whether the field is unset.
func (r MediaRef) IsZero() bool { return r == "" }

// IsRemote reports whether the reference is already a server URL.
func (r MediaRef) IsRemote() bool {
	lower := strings.ToLower(string(r))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsLocal reports whether the reference still points at a device-local file.
func (r MediaRef) IsLocal() bool { return !r.IsZero() && !r.IsRemote() }

func (r MediaRef) String() string { return string(r) }

// Responser describes the person answering the survey.
type Responser struct {
	Name          string   `json:"name,omitempty"`
	Location      string   `json:"location,omitempty"`
	HouseImageURL MediaRef `json:"house_image_url,omitempty"`
	PhotoURL      MediaRef `json:"photo_url,omitempty"`
}

// Answer is one answer row. Exactly the backend's wire shape; AudioURL and
// VideoURL are the only media-bearing fields.
type Answer struct {
	QuestionID       int64    `json:"question_id"`
	SelectedOptionID *int64   `json:"selected_option_id,omitempty"`
	SubQuestionID    *int64   `json:"sub_question_id,omitempty"`
	CustomAnswer     string   `json:"custom_answer,omitempty"`
	AudioURL         MediaRef `json:"audio_url,omitempty"`
	VideoURL         MediaRef `json:"video_url,omitempty"`
}

// SubmissionPayload is the POST /survey/{id}/answers body.
type SubmissionPayload struct {
	Responser *Responser `json:"responser,omitempty"`
	Answers   []Answer   `json:"answers"`
}

// LocalRefs returns the distinct local URIs referenced by the payload's
// media fields, in field order. Remote references are skipped.
func (p *SubmissionPayload) LocalRefs() []string {
	if p == nil {
		return nil
	}

	var refs []string
	seen := make(map[string]struct{})
	add := func(r MediaRef) {
		if !r.IsLocal() {
			return
		}
		if _, ok := seen[string(r)]; ok {
			return
		}
		seen[string(r)] = struct{}{}
		refs = append(refs, string(r))
	}

	if p.Responser != nil {
		add(p.Responser.HouseImageURL)
		add(p.Responser.PhotoURL)
	}
	for i := range p.Answers {
		add(p.Answers[i].AudioURL)
		add(p.Answers[i].VideoURL)
	}
	return refs
}

// Rewrite returns a deep copy of the payload with every media field whose
// value appears in urls replaced by the mapped remote URL. Fields without a
// mapping are copied unchanged.
func (p *SubmissionPayload) Rewrite(urls map[string]string) *SubmissionPayload {
	if p == nil {
		return nil
	}

	swap := func(r MediaRef) MediaRef {
		if mapped, ok := urls[string(r)]; ok {
			return MediaRef(mapped)
		}
		return r
	}

	out := &SubmissionPayload{}
	if p.Responser != nil {
		r := *p.Responser
		r.HouseImageURL = swap(r.HouseImageURL)
		r.PhotoURL = swap(r.PhotoURL)
		out.Responser = &r
	}
	out.Answers = make([]Answer, len(p.Answers))
	for i, a := range p.Answers {
		if a.SelectedOptionID != nil {
			v := *a.SelectedOptionID
			a.SelectedOptionID = &v
		}
		if a.SubQuestionID != nil {
			v := *a.SubQuestionID
			a.SubQuestionID = &v
		}
		a.AudioURL = swap(a.AudioURL)
		a.VideoURL = swap(a.VideoURL)
		out.Answers[i] = a
	}
	return out
}
