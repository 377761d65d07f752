package storage

import (
	"testing"

	"github.com/valter-silva-au/taskboard/pkg/models"
	"pgregory.net/rapid"
)

func genPriority(t *rapid.T) models.Priority {
	return rapid.SampledFrom(models.AllPriorities()).Draw(t, "priority")
}

func genStatus(t *rapid.T) models.TaskStatus {
	return rapid.SampledFrom(models.AllStatuses()).Draw(t, "status")
}

// pickID draws either an existing ID or one that is not in the store.
func pickID(t *rapid.T, s TaskStore) string {
	all := s.All()
	if len(all) == 0 || rapid.Bool().Draw(t, "missing") {
		return "no-such-task"
	}
	return all[rapid.IntRange(0, len(all)-1).Draw(t, "idx")].ID
}

// Feature: taskboard, Property 1: Created Tasks Are Unique And Start Today
func TestProperty_CreateUniqueToday(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewTaskStore(&counterIDs{})
		n := rapid.IntRange(1, 50).Draw(rt, "n")

		seen := make(map[string]struct{}, n)
		for i := 0; i < n; i++ {
			title := rapid.String().Draw(rt, "title")
			task, err := s.Create(title, "", genPriority(rt))
			if err != nil {
				rt.Fatalf("create %d: %v", i, err)
			}
			if task.Status != models.StatusToday {
				rt.Fatalf("task %s created with status %q", task.ID, task.Status)
			}
			if _, dup := seen[task.ID]; dup {
				rt.Fatalf("duplicate ID %q", task.ID)
			}
			seen[task.ID] = struct{}{}
		}
		if s.Len() != n {
			rt.Fatalf("expected %d tasks, got %d", n, s.Len())
		}
	})
}

// Feature: taskboard, Property 2: Filter Is The Ordered Status Subset
func TestProperty_FilterByStatusIsOrderedSubset(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewTaskStore(&counterIDs{})
		n := rapid.IntRange(0, 30).Draw(rt, "n")
		for i := 0; i < n; i++ {
			task, err := s.Create("t", "", genPriority(rt))
			if err != nil {
				rt.Fatal(err)
			}
			s.SetStatus(task.ID, genStatus(rt))
		}

		all := s.All()
		total := 0
		for _, status := range models.AllStatuses() {
			var want []models.Task
			for _, task := range all {
				if task.Status == status {
					want = append(want, task)
				}
			}
			got := s.FilterByStatus(status)
			if len(got) != len(want) {
				rt.Fatalf("status %s: expected %d tasks, got %d", status, len(want), len(got))
			}
			for i := range want {
				if got[i] != want[i] {
					rt.Fatalf("status %s position %d: expected %+v, got %+v", status, i, want[i], got[i])
				}
			}
			total += len(got)
		}
		if total != len(all) {
			rt.Fatalf("buckets hold %d tasks, store holds %d", total, len(all))
		}
	})
}

// Feature: taskboard, Property 3: Update Touches Only Its Target
func TestProperty_UpdateTouchesOnlyTarget(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewTaskStore(&counterIDs{})
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			task, _ := s.Create(rapid.String().Draw(rt, "title"), rapid.String().Draw(rt, "desc"), genPriority(rt))
			s.SetStatus(task.ID, genStatus(rt))
		}

		before := s.All()
		id := pickID(rt, s)
		title := rapid.String().Draw(rt, "newTitle")
		desc := rapid.String().Draw(rt, "newDesc")
		p := genPriority(rt)

		res := s.Update(id, title, desc, p)
		after := s.All()

		if len(after) != len(before) {
			rt.Fatalf("length changed from %d to %d", len(before), len(after))
		}
		for i := range before {
			if before[i].ID != id {
				if after[i] != before[i] {
					rt.Fatalf("non-target task changed: %+v -> %+v", before[i], after[i])
				}
				continue
			}
			if res != Applied {
				rt.Fatalf("expected Applied for existing id %s", id)
			}
			want := models.Task{ID: id, Title: title, Description: desc, Priority: p, Status: before[i].Status}
			if after[i] != want {
				rt.Fatalf("expected %+v, got %+v", want, after[i])
			}
		}
	})
}

// Feature: taskboard, Property 4: Delete Shrinks By Exactly One Or Nothing
func TestProperty_DeleteShrinksByOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewTaskStore(&counterIDs{})
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			_, _ = s.Create("t", "", genPriority(rt))
		}

		id := pickID(rt, s)
		_, existed := s.Get(id)
		before := s.Len()

		res := s.Delete(id)

		if _, still := s.Get(id); still {
			rt.Fatalf("task %s still present after delete", id)
		}
		switch {
		case existed && (res != Applied || s.Len() != before-1):
			rt.Fatalf("expected Applied and length %d, got %s and %d", before-1, res, s.Len())
		case !existed && (res != NotFound || s.Len() != before):
			rt.Fatalf("expected NotFound and length %d, got %s and %d", before, res, s.Len())
		}
	})
}

// Feature: taskboard, Property 5: SetStatus Changes Only Status
func TestProperty_SetStatusChangesOnlyStatus(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewTaskStore(&counterIDs{})
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			_, _ = s.Create(rapid.String().Draw(rt, "title"), "", genPriority(rt))
		}

		before := s.All()
		target := before[rapid.IntRange(0, len(before)-1).Draw(rt, "target")]
		status := genStatus(rt)

		if res := s.SetStatus(target.ID, status); res != Applied {
			rt.Fatalf("expected Applied, got %s", res)
		}

		got, _ := s.Get(target.ID)
		want := target
		want.Status = status
		if got != want {
			rt.Fatalf("expected %+v, got %+v", want, got)
		}

		found := false
		for _, task := range s.FilterByStatus(status) {
			if task.ID == target.ID {
				found = true
			}
		}
		if !found {
			rt.Fatalf("task %s missing from %s bucket", target.ID, status)
		}
		for _, other := range models.AllStatuses() {
			if other == status {
				continue
			}
			for _, task := range s.FilterByStatus(other) {
				if task.ID == target.ID {
					rt.Fatalf("task %s still in %s bucket", target.ID, other)
				}
			}
		}
	})
}
