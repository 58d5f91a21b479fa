package models

// Follow is a directed edge: FollowerID follows FollowedID.
// The composite primary key keeps at most one edge per ordered pair.
type Follow struct {
	FollowerID uint `gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName overrides the table name used by GORM
func (Follow) TableName() string {
	return "followers"
}
