package leaderboard

import (
	"errors"
	"sort"
	"strings"
)

// Capacity 排行榜最多保留的条目数
const Capacity = 10

var ErrEmptyUsername = errors.New("leaderboard: empty username")

// Entry 持久化排行榜的一条记录
type Entry struct {
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Distance  int    `json:"distance"`
	Timestamp int64  `json:"timestamp"`
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Username) == "" {
		return ErrEmptyUsername
	}
	return nil
}

// Merge 插入一条记录，返回按分数降序、最多 Capacity 条的新列表（不修改入参）
// 同分时先达成者在前
func Merge(list []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, e)
	Sort(out)
	if len(out) > Capacity {
		out = out[:Capacity]
	}
	return out
}

func Sort(list []Entry) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].Timestamp < list[j].Timestamp
	})
}

// Qualifies 判断某分数能否进入榜单
func Qualifies(list []Entry, score int) bool {
	return len(list) < Capacity || score > list[len(list)-1].Score
}

// Online 在线玩家的实时排名（不截断）
func Online(peers []Entry) []Entry {
	out := append(make([]Entry, 0, len(peers)), peers...)
	Sort(out)
	return out
}
