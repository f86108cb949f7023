package memorystore

import (
	"context"
	"testing"
)

func TestTaskStore_Scenario(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()

	created, err := s.Add(ctx, "buy milk")
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != "1" || created.Text != "buy milk" || created.Done {
		t.Fatalf("created=%+v", created)
	}

	if err := s.Update(ctx, created.ID, "buy milk", true); err != nil {
		t.Fatal(err)
	}
	tasks, _ := s.List(ctx)
	if len(tasks) != 1 || !tasks[0].Done {
		t.Fatalf("tasks=%+v", tasks)
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	tasks, _ = s.List(ctx)
	if len(tasks) != 0 {
		t.Fatalf("expected empty, got %+v", tasks)
	}
}

func TestTaskStore_InsertionOrderAndUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()

	for _, text := range []string{"a", "b", "c"} {
		if _, err := s.Add(ctx, text); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.Delete(ctx, "3")
	d, _ := s.Add(ctx, "d")
	if d.ID != "4" {
		t.Fatalf("ids must not be reused, got %s", d.ID)
	}

	tasks, _ := s.List(ctx)
	got := ""
	for _, task := range tasks {
		got += task.Text
	}
	if got != "abd" {
		t.Fatalf("order=%q", got)
	}
}

func TestTaskStore_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	_, _ = s.Add(ctx, "keep")

	if err := s.Update(ctx, "99", "changed", true); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Delete(ctx, "99"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tasks, _ := s.List(ctx)
	if len(tasks) != 1 || tasks[0].Text != "keep" || tasks[0].Done {
		t.Fatalf("tasks=%+v", tasks)
	}
}

func TestTaskStore_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	_, _ = s.Add(ctx, "original")

	tasks, _ := s.List(ctx)
	tasks[0].Text = "mutated"

	again, _ := s.List(ctx)
	if again[0].Text != "original" {
		t.Fatalf("store leaked its slice")
	}
}

func TestTaskStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	_, _ = s.Add(ctx, "a")
	_, _ = s.Add(ctx, "b")

	if err := s.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	tasks, _ := s.List(ctx)
	if len(tasks) != 0 {
		t.Fatalf("tasks=%+v", tasks)
	}
}
