package domain

import (
	"sort"
)

// BuildGroupTree joins categories onto their groups by GroupID. Groups are
// ordered by SortOrder, and each group's categories by their own SortOrder.
// Input order is irrelevant; categories whose group is unknown are dropped.
func BuildGroupTree(groups []CategoryGroup, categories []Category) []GroupWithCategories {
	byGroup := make(map[string][]Category, len(groups))
	for _, cat := range categories {
		if cat.GroupID == "" {
			continue
		}
		byGroup[cat.GroupID] = append(byGroup[cat.GroupID], cat)
	}

	ordered := append([]CategoryGroup(nil), groups...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	tree := make([]GroupWithCategories, 0, len(ordered))
	for _, group := range ordered {
		members := append([]Category(nil), byGroup[group.ID]...)
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].SortOrder < members[j].SortOrder
		})
		tree = append(tree, GroupWithCategories{Group: group, Categories: members})
	}
	return tree
}
