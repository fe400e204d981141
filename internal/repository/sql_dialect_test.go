package repository

import (
	"testing"
)

func TestBuildLikeConditionSQLite(t *testing.T) {
	condition, argCount := buildLikeCondition(nil, []string{"title", " ", "slug"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if condition != "title LIKE ? OR slug LIKE ?" {
		t.Fatalf("unexpected condition: %s", condition)
	}
}

func TestBuildLikeConditionPostgres(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("postgres", []string{"email"})
	if argCount != 1 || condition != "email ILIKE ?" {
		t.Fatalf("unexpected postgres condition: %s (%d)", condition, argCount)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%shirt%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%shirt%" {
			t.Fatalf("args[%d] want %%shirt%% got %v", idx, arg)
		}
	}
}
