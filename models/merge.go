package models

// ============================================================================
// Merge Engine
//
// Merge reconciles the local collection against a remote pull. It is a
// pure function — no store access, no persistence, no logging — so the
// sync client can compute a result, inspect the conflicts, and decide
// what to apply. Resolution policy is server-wins: when both sides hold
// the same logical quote with differing content, the remote copy lands in
// the merged output and the disagreement is surfaced as a Conflict for
// optional manual override.
//
// Identity is the pluggable KeyFunc, normally NormalizeKey (lowercased,
// trimmed text). Because the default key ignores category and id, merge
// output is deliberately asymmetric: Merge(L, R) != Merge(R, L) whenever
// conflicts exist.
// ============================================================================

// Conflict pairs two quotes that share a merge key but differ in content.
// It lives for one sync cycle plus the optional review UI.
type Conflict struct {
	Key    string `json:"key"`
	Local  Quote  `json:"local"`
	Remote Quote  `json:"remote"`
}

// Merge computes the reconciled collection and the conflicts found along
// the way. key may be nil, in which case NormalizeKey is used.
//
// Per key, four cases:
//   - remote only: remote quote, origin stamped remote
//   - local only: local quote unchanged
//   - both, same text and category (normalized): one copy, remote
//     preferred, UpdatedAt = max of the two
//   - both, differing content: Conflict recorded; remote copy included
//     with UpdatedAt = max (server-wins)
//
// Output order is first-seen key order: remote quotes first, then
// local-only quotes. Within a side, a later quote with a duplicate key
// overwrites an earlier one — intra-side duplicates are not conflicts.
func Merge(local, remote []Quote, key KeyFunc) (merged []Quote, conflicts []Conflict) {
	if key == nil {
		key = NormalizeKey
	}

	localByKey := make(map[string]Quote, len(local))
	for _, q := range local {
		localByKey[key(q)] = q
	}
	remoteByKey := make(map[string]Quote, len(remote))
	for _, q := range remote {
		remoteByKey[key(q)] = q
	}

	seen := make(map[string]bool, len(localByKey)+len(remoteByKey))
	var order []string
	for _, q := range remote {
		k := key(q)
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}
	for _, q := range local {
		k := key(q)
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}

	merged = make([]Quote, 0, len(order))
	for _, k := range order {
		lq, inLocal := localByKey[k]
		rq, inRemote := remoteByKey[k]

		switch {
		case inRemote && !inLocal:
			rq.Origin = OriginRemote
			merged = append(merged, rq)

		case inLocal && !inRemote:
			merged = append(merged, lq)

		default: // both sides
			winner := rq
			winner.Origin = OriginRemote
			if lq.UpdatedAt.After(winner.UpdatedAt) {
				winner.UpdatedAt = lq.UpdatedAt
			}

			if !sameContent(lq, rq) {
				conflicts = append(conflicts, Conflict{Key: k, Local: lq, Remote: rq})
			}
			merged = append(merged, winner)
		}
	}

	return merged, conflicts
}

// sameContent reports whether two quotes agree on normalized text and
// category. Ids, origins, and timestamps do not count as disagreement.
func sameContent(a, b Quote) bool {
	return NormalizeText(a.Text) == NormalizeText(b.Text) &&
		NormalizeText(a.Category) == NormalizeText(b.Category)
}
