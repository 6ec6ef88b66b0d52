package catalog

type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
