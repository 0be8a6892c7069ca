package domain

import "testing"

func TestFolderNameFallsBackToCategory(t *testing.T) {
	names := map[Category]string{CategoryDiscarded: "  Descartados "}

	if got := FolderName(names, CategoryDiscarded); got != "Descartados" {
		t.Fatalf("FolderName() = %q", got)
	}
	if got := FolderName(names, CategoryMinimum); got != "MinimumCandidate" {
		t.Fatalf("FolderName() = %q", got)
	}
	if got := FolderName(nil, CategoryPlus); got != "PlusCandidate" {
		t.Fatalf("FolderName() = %q", got)
	}
}

func TestCheckFolderNames(t *testing.T) {
	tests := []struct {
		name    string
		names   map[Category]string
		wantErr bool
	}{
		{name: "defaults", names: nil},
		{name: "distinct overrides", names: map[Category]string{
			CategoryMinimum: "Candidato Mínimo",
			CategoryUnicorn: "Candidato Unicornio",
		}},
		{name: "same name", wantErr: true, names: map[Category]string{
			CategoryMinimum: "Same",
			CategoryUnicorn: "Same",
		}},
		{name: "differs only in case and spaces", wantErr: true, names: map[Category]string{
			CategoryMinimum: "Same",
			CategoryUnicorn: " sAME ",
		}},
		{name: "override collides with default label", wantErr: true, names: map[Category]string{
			CategoryMinimum: "discarded",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFolderNames(tt.names)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckFolderNames() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
