package clickup

import (
	"github.com/tidwall/gjson"
)

// Task is the normalised view of a ClickUp task.
type Task struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	TextContent     string   `json:"text_content"`
	Description     string   `json:"description"`
	Status          string   `json:"status"`
	CreatorID       int64    `json:"creator_id"`
	CreatorUsername string   `json:"creator_username"`
	CreatorEmail    string   `json:"creator_email"`
	Assignees       []Member `json:"assignees"`
	Watchers        []Member `json:"watchers"`
	Priority        *string  `json:"priority"`
	DueDate         *string  `json:"due_date"`
	StartDate       *string  `json:"start_date"`
	Points          *float64 `json:"points"`
	TeamID          string   `json:"team_id"`
	ProjectID       string   `json:"project_id"`
}

// Member is a ClickUp user as it appears in teams and task assignees.
type Member struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Initials string `json:"initials"`
}

// Team is a ClickUp workspace.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

// Space is a ClickUp space with its feature toggles flattened to booleans.
type Space struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Private         bool            `json:"private"`
	EnabledFeatures map[string]bool `json:"enabled_features"`
}

// Folder is a ClickUp folder and the lists it contains.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Hidden    bool   `json:"hidden"`
	SpaceID   string `json:"space_id"`
	TaskCount string `json:"task_count,omitempty"`
	Lists     []List `json:"lists,omitempty"`
}

// List is a ClickUp list.
type List struct {
	ID          string  `json:"id"`
	FolderID    string  `json:"folder_id"`
	Name        string  `json:"name"`
	Content     string  `json:"content"`
	DueDate     *string `json:"due_date"`
	DueDateTime bool    `json:"due_date_time"`
	Priority    *string `json:"priority"`
	Assignee    *Member `json:"assignee"`
	Status      *string `json:"status"`
}

func optString(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := r.String()
	return &s
}

func optFloat(r gjson.Result) *float64 {
	if r.Type != gjson.Number {
		return nil
	}
	f := r.Float()
	return &f
}

func toMember(u gjson.Result) Member {
	return Member{
		ID:       u.Get("id").Int(),
		Username: u.Get("username").String(),
		Email:    u.Get("email").String(),
		Initials: u.Get("initials").String(),
	}
}

func toMembers(arr gjson.Result) []Member {
	members := []Member{}
	arr.ForEach(func(_, u gjson.Result) bool {
		members = append(members, toMember(u))
		return true
	})
	return members
}

// toTask converts a task payload. ok is false when the payload is not a task.
func toTask(r gjson.Result) (Task, bool) {
	if !r.IsObject() || !r.Get("id").Exists() {
		return Task{}, false
	}
	return Task{
		ID:              r.Get("id").String(),
		Name:            r.Get("name").String(),
		TextContent:     r.Get("text_content").String(),
		Description:     r.Get("description").String(),
		Status:          r.Get("status.status").String(),
		CreatorID:       r.Get("creator.id").Int(),
		CreatorUsername: r.Get("creator.username").String(),
		CreatorEmail:    r.Get("creator.email").String(),
		Assignees:       toMembers(r.Get("assignees")),
		Watchers:        toMembers(r.Get("watchers")),
		Priority:        optString(r.Get("priority.priority")),
		DueDate:         optString(r.Get("due_date")),
		StartDate:       optString(r.Get("start_date")),
		Points:          optFloat(r.Get("points")),
		TeamID:          r.Get("team_id").String(),
		ProjectID:       r.Get("project.id").String(),
	}, true
}

func toTeam(r gjson.Result) Team {
	team := Team{
		ID:      r.Get("id").String(),
		Name:    r.Get("name").String(),
		Members: []Member{},
	}
	r.Get("members").ForEach(func(_, m gjson.Result) bool {
		team.Members = append(team.Members, toMember(m.Get("user")))
		return true
	})
	return team
}

func toSpace(r gjson.Result) Space {
	space := Space{
		ID:              r.Get("id").String(),
		Name:            r.Get("name").String(),
		Private:         r.Get("private").Bool(),
		EnabledFeatures: map[string]bool{},
	}
	r.Get("features").ForEach(func(name, feature gjson.Result) bool {
		space.EnabledFeatures[name.String()] = feature.Get("enabled").Bool()
		return true
	})
	return space
}

// toList converts a list payload. ok is false when the payload is not a list.
func toList(r gjson.Result) (List, bool) {
	if !r.IsObject() || !r.Get("id").Exists() {
		return List{}, false
	}
	list := List{
		ID:          r.Get("id").String(),
		FolderID:    r.Get("folder.id").String(),
		Name:        r.Get("name").String(),
		Content:     r.Get("content").String(),
		DueDate:     optString(r.Get("due_date")),
		DueDateTime: r.Get("due_date_time").Bool(),
		Priority:    optString(r.Get("priority.priority")),
		Status:      optString(r.Get("status.status")),
	}
	if a := r.Get("assignee"); a.IsObject() {
		m := toMember(a)
		list.Assignee = &m
	}
	return list, true
}

// toFolder converts a folder payload. ok is false when the payload is not a folder.
func toFolder(r gjson.Result) (Folder, bool) {
	if !r.IsObject() || !r.Get("id").Exists() {
		return Folder{}, false
	}
	folder := Folder{
		ID:        r.Get("id").String(),
		Name:      r.Get("name").String(),
		Hidden:    r.Get("hidden").Bool(),
		SpaceID:   r.Get("space.id").String(),
		TaskCount: r.Get("task_count").String(),
	}
	r.Get("lists").ForEach(func(_, l gjson.Result) bool {
		if list, ok := toList(l); ok {
			if list.FolderID == "" {
				list.FolderID = folder.ID
			}
			folder.Lists = append(folder.Lists, list)
		}
		return true
	})
	return folder, true
}
