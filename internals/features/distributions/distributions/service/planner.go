package service

import (
	"math/rand/v2"
	"slices"
)

// Assignment pairs a client with its new owner. Position is the index in assignment order.
type Assignment struct {
	ClientID int64 `json:"client_id"`
	StaffID  int64 `json:"staff_id"`
	Position int   `json:"position"`
}

// ShuffleFunc has the contract of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Plan orders clients by ascending id (creation order), optionally permutes them,
// then deals them round-robin over staffIDs in the order given. Per-staff counts differ by
// at most one; without shuffling the remainder goes to the first staff in the list.
func Plan(clientIDs, staffIDs []int64, randomize bool, shuffle ShuffleFunc) []Assignment {
	if len(clientIDs) == 0 || len(staffIDs) == 0 {
		return nil
	}
	clients := slices.Clone(clientIDs)
	slices.Sort(clients)

	if randomize {
		if shuffle == nil {
			shuffle = rand.Shuffle
		}
		shuffle(len(clients), func(i, j int) {
			clients[i], clients[j] = clients[j], clients[i]
		})
	}

	out := make([]Assignment, len(clients))
	for i, cid := range clients {
		out[i] = Assignment{
			ClientID: cid,
			StaffID:  staffIDs[i%len(staffIDs)],
			Position: i,
		}
	}
	return out
}

// Dedupe drops repeated ids, keeping the first occurrence and its position.
func Dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CountPerStaff returns one entry per staff id, in staff order, zero counts included.
func CountPerStaff(plan []Assignment, staffIDs []int64) []StaffCount {
	counts := make(map[int64]int, len(staffIDs))
	for _, a := range plan {
		counts[a.StaffID]++
	}
	out := make([]StaffCount, 0, len(staffIDs))
	for _, sid := range staffIDs {
		out = append(out, StaffCount{StaffID: sid, Count: counts[sid]})
	}
	return out
}

// groupByStaff keeps staff order and, inside each group, assignment order.
func groupByStaff(plan []Assignment, staffIDs []int64) [][]int64 {
	index := make(map[int64]int, len(staffIDs))
	for i, sid := range staffIDs {
		index[sid] = i
	}
	groups := make([][]int64, len(staffIDs))
	for _, a := range plan {
		i := index[a.StaffID]
		groups[i] = append(groups[i], a.ClientID)
	}
	return groups
}
