package models

// Clone returns a copy of p that shares no slices with it.
func (p Project) Clone() Project {
	p.Milestones = append([]Milestone{}, p.Milestones...)
	return p
}

// Clone returns a copy of t that shares no slices with it.
func (t Task) Clone() Task {
	t.Attachments = append([]Attachment{}, t.Attachments...)
	t.Comments = append([]Comment{}, t.Comments...)
	return t
}

// Clone returns a copy of s that shares no slices with it.
func (s Sprint) Clone() Sprint {
	s.Extensions = append([]Extension{}, s.Extensions...)
	return s
}

// CloneProjects deep copies a project collection.
func CloneProjects(in []Project) []Project {
	out := make([]Project, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

// CloneTasks deep copies a task collection.
func CloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// CloneSprints deep copies a sprint collection.
func CloneSprints(in []Sprint) []Sprint {
	out := make([]Sprint, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
