package model

import "time"

// Team 团队，对应 teams，team_name 唯一
type Team struct {
	TeamID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	TeamName    string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"team_name"`
	Description *string `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive    bool    `gorm:"not null"                                       json:"is_active"`
	CreatedBy   *string `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	Timestamps
}

// TableName 指定表名
func (Team) TableName() string { return "teams" }

// TeamMember 团队成员，对应 team_members，(team_id, user_id) 唯一
type TeamMember struct {
	ID            string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"            json:"id"`
	TeamID        string    `gorm:"type:uuid;not null;uniqueIndex:uq_team_member,priority:1" json:"team_id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:uq_team_member,priority:2" json:"user_id"`
	IsPrimaryTeam bool      `gorm:"not null"                                                  json:"is_primary_team"`
	AssignedBy    *string   `gorm:"type:uuid"                                                 json:"assigned_by,omitempty"`
	AssignedAt    time.Time `gorm:"not null"                                                  json:"assigned_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (TeamMember) TableName() string { return "team_members" }
