package service

import "trainer-lms/internal/model"

// Actor 发起操作的用户身份，由 Handler 从认证上下文构造
type Actor struct {
	UserID      string
	Role        string
	IsSuperuser bool
}

// IsAdmin 管理员或超级用户
func (a Actor) IsAdmin() bool {
	return a.IsSuperuser || a.Role == model.RoleAdmin
}

// IsTrainer 具备课程编辑能力的角色
func (a Actor) IsTrainer() bool {
	return a.IsAdmin() || a.Role == model.RoleTrainer
}

// CanManageCourse 管理员可管理全部课程，培训师仅限自己创建的课程
func (a Actor) CanManageCourse(c *model.Course) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == model.RoleTrainer && c.OwnedBy(a.UserID)
}

// CanViewRoster 可查看课程学员名单
func (a Actor) CanViewRoster(c *model.Course) bool {
	return a.CanManageCourse(c) || a.Role == model.RoleManager
}

// CanManageTeams 可创建团队与调整成员
func (a Actor) CanManageTeams() bool {
	return a.IsTrainer() || a.Role == model.RoleManager
}
