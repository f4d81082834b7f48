package item

import "context"

type Store interface {
	ListItems(ctx context.Context, q ListQuery) (Page, error)
	GetItem(ctx context.Context, id int64) (Detail, error)
	Filters(ctx context.Context) (FilterValues, error)
}
