package command

import "github.com/aychen/folio/internal/content"

// Patches use pointer fields so "absent" and "set to zero value" stay
// distinct. Only non-nil fields are applied; an all-nil patch is a
// validation error.

// ProjectPatch is the partial update carried by update_project.
type ProjectPatch struct {
	Title       *string         `json:"title,omitempty" validate:"omitempty,notblank"`
	Description *string         `json:"description,omitempty" validate:"omitempty,notblank"`
	Stack       *[]string       `json:"stack,omitempty"`
	Year        *int            `json:"year,omitempty" validate:"omitempty,min=2020,max=2030"`
	Links       *content.Links  `json:"links,omitempty"`
	Featured    *bool           `json:"featured,omitempty"`
	Status      *content.Status `json:"status,omitempty" validate:"omitempty,oneof=planning in-progress completed"`
	Lessons     *[]string       `json:"lessons,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p ProjectPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Stack == nil &&
		p.Year == nil && p.Links == nil && p.Featured == nil &&
		p.Status == nil && p.Lessons == nil
}

// Fields lists the names of the set fields, in JSON key form.
func (p ProjectPatch) Fields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Stack != nil {
		fields = append(fields, "stack")
	}
	if p.Year != nil {
		fields = append(fields, "year")
	}
	if p.Links != nil {
		fields = append(fields, "links")
	}
	if p.Featured != nil {
		fields = append(fields, "featured")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.Lessons != nil {
		fields = append(fields, "lessons")
	}
	return fields
}

// Apply overwrites the set fields on the project.
func (p ProjectPatch) Apply(proj *content.Project) {
	if p.Title != nil {
		proj.Title = *p.Title
	}
	if p.Description != nil {
		proj.Description = *p.Description
	}
	if p.Stack != nil {
		proj.Stack = *p.Stack
	}
	if p.Year != nil {
		proj.Year = *p.Year
	}
	if p.Links != nil {
		proj.Links = *p.Links
	}
	if p.Featured != nil {
		proj.Featured = *p.Featured
	}
	if p.Status != nil {
		proj.Status = *p.Status
	}
	if p.Lessons != nil {
		proj.Lessons = *p.Lessons
	}
}

// Revert builds the patch that restores before for exactly the fields
// this patch touches.
func (p ProjectPatch) Revert(before content.Project) ProjectPatch {
	var r ProjectPatch
	if p.Title != nil {
		v := before.Title
		r.Title = &v
	}
	if p.Description != nil {
		v := before.Description
		r.Description = &v
	}
	if p.Stack != nil {
		v := before.Stack
		r.Stack = &v
	}
	if p.Year != nil {
		v := before.Year
		r.Year = &v
	}
	if p.Links != nil {
		v := before.Links
		r.Links = &v
	}
	if p.Featured != nil {
		v := before.Featured
		r.Featured = &v
	}
	if p.Status != nil {
		v := before.Status
		r.Status = &v
	}
	if p.Lessons != nil {
		v := before.Lessons
		r.Lessons = &v
	}
	return r
}

// SkillPatch is the partial update carried by update_skill.
type SkillPatch struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,notblank"`
	IconName   *string `json:"iconName,omitempty" validate:"omitempty,notblank"`
	ColorClass *string `json:"colorClass,omitempty" validate:"omitempty,notblank"`
	Category   *string `json:"category,omitempty" validate:"omitempty,oneof=Frontend Backend Mobile AI/ML Databases Tools"`
	Level      *int    `json:"level,omitempty" validate:"omitempty,min=0,max=100"`
}

// IsEmpty reports whether no field is set.
func (p SkillPatch) IsEmpty() bool {
	return p.Name == nil && p.IconName == nil && p.ColorClass == nil &&
		p.Category == nil && p.Level == nil
}

// Fields lists the names of the set fields, in JSON key form.
func (p SkillPatch) Fields() []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.IconName != nil {
		fields = append(fields, "iconName")
	}
	if p.ColorClass != nil {
		fields = append(fields, "colorClass")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Level != nil {
		fields = append(fields, "level")
	}
	return fields
}

// Apply overwrites the set fields on the skill.
func (p SkillPatch) Apply(skill *content.Skill) {
	if p.Name != nil {
		skill.Name = *p.Name
	}
	if p.IconName != nil {
		skill.IconName = *p.IconName
	}
	if p.ColorClass != nil {
		skill.ColorClass = *p.ColorClass
	}
	if p.Category != nil {
		skill.Category = *p.Category
	}
	if p.Level != nil {
		skill.Level = *p.Level
	}
}

// Revert builds the patch that restores before for exactly the fields
// this patch touches.
func (p SkillPatch) Revert(before content.Skill) SkillPatch {
	var r SkillPatch
	if p.Name != nil {
		v := before.Name
		r.Name = &v
	}
	if p.IconName != nil {
		v := before.IconName
		r.IconName = &v
	}
	if p.ColorClass != nil {
		v := before.ColorClass
		r.ColorClass = &v
	}
	if p.Category != nil {
		v := before.Category
		r.Category = &v
	}
	if p.Level != nil {
		v := before.Level
		r.Level = &v
	}
	return r
}

// JourneyItemPatch is the partial update carried by update_journey_item.
// The item ID itself is never patchable.
type JourneyItemPatch struct {
	Year      *string `json:"year,omitempty" validate:"omitempty,notblank"`
	Title     *string `json:"title,omitempty" validate:"omitempty,notblank"`
	Desc      *string `json:"desc,omitempty" validate:"omitempty,notblank"`
	Icon      *string `json:"icon,omitempty" validate:"omitempty,oneof=Award GraduationCap Lightbulb Rocket Trophy Star Book Code Users Target"`
	IconColor *string `json:"iconColor,omitempty" validate:"omitempty,notblank"`
}

// IsEmpty reports whether no field is set.
func (p JourneyItemPatch) IsEmpty() bool {
	return p.Year == nil && p.Title == nil && p.Desc == nil &&
		p.Icon == nil && p.IconColor == nil
}

// Fields lists the names of the set fields, in JSON key form.
func (p JourneyItemPatch) Fields() []string {
	var fields []string
	if p.Year != nil {
		fields = append(fields, "year")
	}
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Desc != nil {
		fields = append(fields, "desc")
	}
	if p.Icon != nil {
		fields = append(fields, "icon")
	}
	if p.IconColor != nil {
		fields = append(fields, "iconColor")
	}
	return fields
}

// Apply overwrites the set fields on the item.
func (p JourneyItemPatch) Apply(item *content.JourneyItem) {
	if p.Year != nil {
		item.Year = *p.Year
	}
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Desc != nil {
		item.Desc = *p.Desc
	}
	if p.Icon != nil {
		item.Icon = *p.Icon
	}
	if p.IconColor != nil {
		item.IconColor = *p.IconColor
	}
}

// Revert builds the patch that restores before for exactly the fields
// this patch touches.
func (p JourneyItemPatch) Revert(before content.JourneyItem) JourneyItemPatch {
	var r JourneyItemPatch
	if p.Year != nil {
		v := before.Year
		r.Year = &v
	}
	if p.Title != nil {
		v := before.Title
		r.Title = &v
	}
	if p.Desc != nil {
		v := before.Desc
		r.Desc = &v
	}
	if p.Icon != nil {
		v := before.Icon
		r.Icon = &v
	}
	if p.IconColor != nil {
		v := before.IconColor
		r.IconColor = &v
	}
	return r
}
