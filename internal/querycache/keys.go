package querycache

import (
	"fmt"

	"numis-cli/internal/model"
)

// Key is a composite cache identifier: resource type + identifying params.
type Key string

func CoinKey(id int64) Key          { return Key(fmt.Sprintf("coin:%d", id)) }
func CoinPageKey(page int) Key      { return Key(fmt.Sprintf("coins:list:page=%d", page)) }
func ProvenanceKey(coinID int64) Key { return Key(fmt.Sprintf("provenance:%d", coinID)) }

func ReviewKey(tab model.ReviewTab) Key { return Key("review:" + string(tab)) }

const (
	CountsKey   Key = "review:counts"
	JobsKey     Key = "auction:jobs"
	StatsKey    Key = "stats"
	WishlistKey Key = "wishlist"
)

func JobKey(id string) Key  { return Key("auction:job:" + id) }
func LotsKey(id string) Key { return Key("auction:lots:" + id) }
