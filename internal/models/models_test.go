package models_test

import (
	"math"
	"testing"

	"sa-birth-backend/internal/models"
)

func TestSenseSet(t *testing.T) {
	var set models.SenseSet

	for _, id := range []uint32{0, 2, 5} {
		set = set.MarkCompleted(id)
	}

	if set != 0b100101 {
		t.Errorf("Expected bitmask 0b100101, got %b", set)
	}

	if !set.IsCompleted(2) || set.IsCompleted(1) {
		t.Error("IsCompleted disagrees with marked senses")
	}

	if set.Count() != 3 {
		t.Errorf("Expected 3 completed senses, got %d", set.Count())
	}

	if set.MarkCompleted(6) != set {
		t.Error("Out of range sense should not change the set")
	}

	if set.IsCompleted(31) {
		t.Error("Out of range sense should never be completed")
	}

	if set.Complete() {
		t.Error("Partial set should not be complete")
	}

	for id := uint32(0); id < models.SenseCount; id++ {
		set = set.MarkCompleted(id)
	}
	if !set.Complete() || set != models.AllSenses {
		t.Errorf("Expected all senses, got %b", set)
	}
}

func TestCharacter(t *testing.T) {
	if !models.CharacterCarol.Valid() {
		t.Error("CAROL should be a valid character")
	}
	if models.Character(3).Valid() {
		t.Error("Character 3 should be invalid")
	}
	if models.CharacterRobert.String() != "ROBERT" {
		t.Errorf("Unexpected name %s", models.CharacterRobert)
	}
}

func TestMazeID(t *testing.T) {
	if got := models.MazeID(models.CharacterCarol, 4); got != 0x204 {
		t.Errorf("Expected maze id 0x204, got %#x", got)
	}
	if got := models.MazeID(models.CharacterAlice, 0); got != 0 {
		t.Errorf("Expected maze id 0, got %#x", got)
	}
}

func TestCheckedArithmetic(t *testing.T) {
	if p, ok := models.CheckedMul(100, 50); !ok || p != 5000 {
		t.Errorf("Expected 5000, got %d (ok=%v)", p, ok)
	}

	if _, ok := models.CheckedMul(math.MaxUint64, 2); ok {
		t.Error("Expected overflow")
	}

	if s := models.SaturatingAdd(math.MaxUint64-1, 5); s != math.MaxUint64 {
		t.Errorf("Expected saturation, got %d", s)
	}

	if n := models.SaturatingIncrement(math.MaxUint32); n != math.MaxUint32 {
		t.Errorf("Expected counter to saturate, got %d", n)
	}
}

func TestGenerateSessionID(t *testing.T) {
	if models.GenerateSessionID() == 0 {
		t.Error("Generated session id must not be zero")
	}
}

func TestSenseRequestProof(t *testing.T) {
	req := &models.SenseRequest{ProofHex: "0xdeadbeef"}
	proof, err := req.Proof()
	if err != nil {
		t.Fatalf("Failed to decode proof: %v", err)
	}
	if len(proof) != 4 {
		t.Errorf("Expected 4 proof bytes, got %d", len(proof))
	}

	req.ProofHex = "zz"
	if _, err := req.Proof(); err == nil {
		t.Error("Invalid hex should fail to decode")
	}
}

func TestSenseName(t *testing.T) {
	if models.SenseName(5) != "proprioception" {
		t.Errorf("Unexpected sense name %q", models.SenseName(5))
	}
	if models.SenseName(6) != "" {
		t.Error("Out of range sense should have no name")
	}
}
