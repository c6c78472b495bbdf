// Package access はロールに基づく可視範囲の導出を提供する。
//
// 可視範囲はユーザーのロールから純粋に導出され、ストアには保存されない。
// 判定はすべてサーバー側で行い、クライアントの申告を信用しない。
package access

import "github.com/hitoshi/scrumdesk/internal/model"

// View は操作主体に許可された可視範囲と操作権限を表す。
type View struct {
	// AllScrums は全スクラムの閲覧可否。
	AllScrums bool
	// AllTasks は全タスクの閲覧可否。falseの場合は自分の担当タスクのみ。
	AllTasks bool
	// ManageUsers はユーザー作成・一覧の可否。
	ManageUsers bool
	// CreateScrums はスクラム・タスク作成の可否。
	CreateScrums bool
}

// Project は操作主体のロールからViewを導出する。
// 未知のロールには何も許可しない。
func Project(principal *model.User) View {
	if principal == nil {
		return View{}
	}

	switch principal.Role {
	case model.RoleAdmin:
		return View{
			AllScrums:    true,
			AllTasks:     true,
			ManageUsers:  true,
			CreateScrums: true,
		}
	case model.RoleEmployee:
		// 従業員にはスクラム一覧もユーザー管理も許可しない。
		// 見えるのは自分の担当タスクだけで、それはAllTasks=falseの
		// 担当者スコープとして表現される。
		return View{}
	default:
		return View{}
	}
}

// CanViewTask は操作主体がタスクを閲覧できるかを判定する。
// 管理者は全タスク、従業員は自分の担当タスクのみ閲覧できる。
func CanViewTask(principal *model.User, task *model.Task) bool {
	if principal == nil || task == nil {
		return false
	}
	if Project(principal).AllTasks {
		return true
	}
	return task.AssignedTo == principal.ID
}

// FilterManageable は管理対象となるユーザーの一覧を返す。
// 管理者アカウント（自分自身を含む）は管理対象から除外される。
func FilterManageable(users []*model.User) []*model.User {
	manageable := make([]*model.User, 0, len(users))
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			continue
		}
		manageable = append(manageable, u)
	}
	return manageable
}
