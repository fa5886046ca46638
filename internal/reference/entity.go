// AngelaMos | 2026
// entity.go

package reference

type Category struct {
	ID   int64  `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
}

type City struct {
	ID   int64  `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
}
