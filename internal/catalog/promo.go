package catalog

// CurrentWeekSlug marks the "товары текущей недели" child of the
// time-limited-offers category.
const CurrentWeekSlug = "tovary-tekushchei-nedeli"

// ResolvePromoCategoryID picks the category whose products are shown as the
// default deals surface, in priority order:
//  1. the is_inout node ("НАДО УСПЕТЬ"): its current-week child by slug,
//     else its first child, else the node itself;
//  2. the first display category;
//  3. nothing: ok == false, the caller skips the promo section.
func ResolvePromoCategoryID(tree []Category, opts DisplayOptions) (int64, bool) {
	for _, c := range Flatten(tree) {
		if !c.IsInout {
			continue
		}
		if len(c.Children) > 0 {
			for _, ch := range c.Children {
				if ch.Slug == CurrentWeekSlug {
					return ch.ID, true
				}
			}
			return c.Children[0].ID, true
		}
		return c.ID, true
	}

	if main := DisplayCategories(tree, opts); len(main) > 0 {
		return main[0].ID, true
	}
	return 0, false
}
