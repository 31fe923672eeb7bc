package store

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUpdate(t *testing.T, s *Store, op Op, fn Transform) {
	t.Helper()
	_, err := s.Update(op, fn)
	require.NoError(t, err)
}

func TestEducationScenario(t *testing.T) {
	s := New()
	mustUpdate(t, s, OpAppend, Append(types.CollectionEducation))
	mustUpdate(t, s, OpUpdateEntry, UpdateEntry(types.CollectionEducation, 0, types.EntrySchool, "MIT"))

	want := []types.Education{{School: "MIT", Degree: "", Dates: "", AdditionalInfo: ""}}
	if diff := cmp.Diff(want, s.Document().Education); diff != "" {
		t.Errorf("education mismatch (-want +got):\n%s", diff)
	}
}

func TestSkillsRemoveScenario(t *testing.T) {
	s := New()
	for i, v := range []string{"Go", "Rust", "C++"} {
		mustUpdate(t, s, OpAppend, Append(types.CollectionSkills))
		mustUpdate(t, s, OpUpdateEntry, UpdateEntry(types.CollectionSkills, i, types.EntryValue, v))
	}

	mustUpdate(t, s, OpRemove, Remove(types.CollectionSkills, 1))

	assert.Equal(t, []types.Skill{{Value: "Go"}, {Value: "C++"}}, s.Document().Skills)
}

func TestUpdateScalar_LeavesCollectionsUntouched(t *testing.T) {
	s := New()
	mustUpdate(t, s, OpAppend, Append(types.CollectionProjects))
	mustUpdate(t, s, OpUpdateEntry, UpdateEntry(types.CollectionProjects, 0, types.EntryName, "cv-builder"))
	before := s.Document()

	mustUpdate(t, s, OpUpdateScalar, UpdateScalar(types.FieldEmail, "a@b.com"))

	after := s.Document()
	assert.Equal(t, "a@b.com", after.Email)
	after.Email = before.Email
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("unexpected change (-before +after):\n%s", diff)
	}
}

func TestAppendThenRemove_IsIdentity(t *testing.T) {
	for _, c := range types.Collections() {
		t.Run(string(c), func(t *testing.T) {
			s := New()
			mustUpdate(t, s, OpAppend, Append(c))
			mustUpdate(t, s, OpUpdateEntry, UpdateEntry(c, 0, c.Fields()[0], "keep"))
			before := s.Document()

			mustUpdate(t, s, OpAppend, Append(c))
			mustUpdate(t, s, OpRemove, Remove(c, 1))

			if diff := cmp.Diff(before, s.Document()); diff != "" {
				t.Errorf("append+remove changed the document (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateEntry_TouchesOnlyTarget(t *testing.T) {
	s := New()
	for i := 0; i < 3; i++ {
		mustUpdate(t, s, OpAppend, Append(types.CollectionWorkExperience))
		for _, f := range types.CollectionWorkExperience.Fields() {
			mustUpdate(t, s, OpUpdateEntry, UpdateEntry(types.CollectionWorkExperience, i, f, "orig"))
		}
	}
	before := s.Document()

	mustUpdate(t, s, OpUpdateEntry, UpdateEntry(types.CollectionWorkExperience, 1, types.EntryDates, "2020-2024"))

	after := s.Document()
	want := before.Clone()
	want.WorkExperience[1].Dates = "2020-2024"
	if diff := cmp.Diff(want, after); diff != "" {
		t.Errorf("unexpected change (-want +got):\n%s", diff)
	}
}

func TestOutOfRange_LeavesStateUnchanged(t *testing.T) {
	s := New()
	mustUpdate(t, s, OpAppend, Append(types.CollectionLanguages))
	before, version := s.Snapshot()

	tests := []struct {
		name string
		fn   Transform
	}{
		{"remove past end", Remove(types.CollectionLanguages, 1)},
		{"remove negative", Remove(types.CollectionLanguages, -1)},
		{"remove empty collection", Remove(types.CollectionEducation, 0)},
		{"update past end", UpdateEntry(types.CollectionLanguages, 5, types.EntryName, "French")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Update(OpRemove, tt.fn)
			var target *OutOfRangeError
			require.ErrorAs(t, err, &target)
			assert.Equal(t, version, got)

			after, afterVersion := s.Snapshot()
			assert.Equal(t, version, afterVersion)
			if diff := cmp.Diff(before, after); diff != "" {
				t.Errorf("document changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnknownCollectionOrField_Rejected(t *testing.T) {
	s := New()
	mustUpdate(t, s, OpAppend, Append(types.CollectionSkills))
	before, version := s.Snapshot()

	tests := []struct {
		name string
		fn   Transform
		want any
	}{
		{"append", Append(types.Collection("hobbies")), &types.UnknownCollectionError{}},
		{"remove", Remove(types.Collection("hobbies"), 0), &types.UnknownCollectionError{}},
		{"update entry", UpdateEntry(types.Collection("hobbies"), 0, types.EntryName, "chess"), &types.UnknownFieldError{}},
		{"field of another collection", UpdateEntry(types.CollectionSkills, 0, types.EntrySchool, "MIT"), &types.UnknownFieldError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uint64
			var err error
			require.NotPanics(t, func() { got, err = s.Update(OpAppend, tt.fn) })
			require.Error(t, err)
			assert.IsType(t, tt.want, err)
			assert.Equal(t, version, got)

			after, _ := s.Snapshot()
			if diff := cmp.Diff(before, after); diff != "" {
				t.Errorf("document changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOutOfRangeError_Message(t *testing.T) {
	err := &OutOfRangeError{Collection: types.CollectionSkills, Index: 4, Len: 2}
	assert.Equal(t, "index 4 out of range for skills (len 2)", err.Error())
}

// model mirrors one collection as plain string slices for the property test.
type model [][]string

func TestRandomSequences_MatchModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, c := range types.Collections() {
		t.Run(string(c), func(t *testing.T) {
			s := New()
			fields := c.Fields()
			var m model
			appends, removes := 0, 0

			for step := 0; step < 500; step++ {
				switch op := rng.Intn(3); {
				case op == 0 || len(m) == 0:
					mustUpdate(t, s, OpAppend, Append(c))
					m = append(m, make([]string, len(fields)))
					appends++
				case op == 1:
					i := rng.Intn(len(m))
					mustUpdate(t, s, OpRemove, Remove(c, i))
					m = append(m[:i:i], m[i+1:]...)
					removes++
				default:
					i := rng.Intn(len(m))
					f := rng.Intn(len(fields))
					v := string(rune('a' + rng.Intn(26)))
					mustUpdate(t, s, OpUpdateEntry, UpdateEntry(c, i, fields[f], v))
					m[i][f] = v
				}
			}

			doc := s.Document()
			require.Equal(t, appends-removes, doc.Len(c))
			for i := range m {
				for f, field := range fields {
					assert.Equal(t, m[i][f], doc.EntryValue(c, i, field), "entry %d field %s", i, field)
				}
			}
		})
	}
}

func TestSubscribe_NotifiedOnSuccessOnly(t *testing.T) {
	s := New()
	var versions []uint64
	var last types.Document
	unsubscribe := s.Subscribe(func(doc types.Document, version uint64) {
		versions = append(versions, version)
		last = doc
	})

	mustUpdate(t, s, OpUpdateScalar, UpdateScalar(types.FieldName, "Ada"))
	_, err := s.Update(OpRemove, Remove(types.CollectionSkills, 0))
	require.Error(t, err)
	mustUpdate(t, s, OpUpdateScalar, UpdateScalar(types.FieldSurname, "Lovelace"))

	assert.Equal(t, []uint64{1, 2}, versions)
	assert.Equal(t, "Ada Lovelace", last.FullName())

	unsubscribe()
	unsubscribe()
	mustUpdate(t, s, OpUpdateScalar, UpdateScalar(types.FieldPhone, "555"))
	assert.Len(t, versions, 2)
}

func TestSnapshot_CannotMutateStore(t *testing.T) {
	s := New()
	mustUpdate(t, s, OpAppend, Append(types.CollectionSkills))

	doc := s.Document()
	doc.Skills[0].Value = "leaked"

	assert.Equal(t, "", s.Document().Skills[0].Value)
}

func TestReplace_NormalizesCollections(t *testing.T) {
	s := New()
	mustUpdate(t, s, OpReplace, Replace(types.Document{Name: "Grace"}))

	doc := s.Document()
	assert.Equal(t, "Grace", doc.Name)
	assert.NotNil(t, doc.Skills)
	assert.Equal(t, 0, doc.Len(types.CollectionSkills))
}

type recordingObserver struct {
	mu   sync.Mutex
	ops  []Op
	errs int
}

func (o *recordingObserver) ObserveUpdate(op Op, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op)
	if err != nil {
		o.errs++
	}
}

func TestObserver_SeesEveryAttempt(t *testing.T) {
	obs := &recordingObserver{}
	s := New(WithObserver(obs))

	mustUpdate(t, s, OpAppend, Append(types.CollectionEducation))
	_, _ = s.Update(OpRemove, Remove(types.CollectionEducation, 3))

	assert.Equal(t, []Op{OpAppend, OpRemove}, obs.ops)
	assert.Equal(t, 1, obs.errs)
}

func TestConcurrentUpdates_AreSerialized(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(OpAppend, Append(types.CollectionSkills))
		}()
	}
	wg.Wait()

	doc, version := s.Snapshot()
	assert.Equal(t, 50, len(doc.Skills))
	assert.Equal(t, uint64(50), version)
}
