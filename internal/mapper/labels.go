package mapper

import "sort"

// TagsFromLabels converts remote labels into local tags. The result is
// sorted and free of duplicates.
func TagsFromLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	tags := make([]string, 0, len(labels))
	for _, l := range labels {
		tag := Slugify(l)
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// LabelsFromTags maps local tags back onto the remote label set. Tags with a
// known counterpart use the remote spelling; the rest are returned in
// unknown and passed through verbatim in labels, since labels (unlike
// statuses) may be created on the fly.
func LabelsFromTags(tags []string, knownLabels []string) (labels []string, unknown []string) {
	bySlug := make(map[string]string, len(knownLabels))
	for _, l := range knownLabels {
		slug := Slugify(l)
		if _, exists := bySlug[slug]; !exists {
			bySlug[slug] = l
		}
	}

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		label, ok := bySlug[Slugify(tag)]
		if !ok {
			label = tag
			unknown = append(unknown, tag)
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels, unknown
}
