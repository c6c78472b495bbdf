package model

// Scrum は0個以上のタスクを持つチーム/ワークストリームを表す。
// タスク側がScrumIDを外部キーとして保持する一対多の関係。
// スクラムの削除操作はドメインに存在しない。
type Scrum struct {
	ID   string
	Name string
}
