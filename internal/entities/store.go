package entities

import (
	"errors"

	"github.com/mlange-42/ark/ecs"
)

var (
	ErrNoPlayer        = errors.New("no player entity")
	ErrMultiplePlayers = errors.New("more than one player entity")
)

// Entity is an opaque entity handle.
type Entity = ecs.Entity

// Sprite pairs a drawable with where to draw it.
type Sprite struct {
	Position Position `json:"position"`
	Drawable Drawable `json:"drawable"`
}

// Store owns all entities and their components.
//
// Structural changes (spawning) must not happen while one of the Each
// iterations is running; the underlying world is locked during queries.
type Store struct {
	world *ecs.World

	positions *ecs.Map[Position]
	houses    *ecs.Map[House]
	persons   *ecs.Map[Person]
	visions   *ecs.Map[Vision]

	playerMapper *ecs.Map4[Position, Drawable, Vision, Player]
	houseMapper  *ecs.Map3[Position, Drawable, House]
	personMapper *ecs.Map3[Position, Drawable, Person]

	playerFilter *ecs.Filter2[Position, Player]
	houseFilter  *ecs.Filter2[Position, House]
	personFilter *ecs.Filter2[Position, Person]
	visionFilter *ecs.Filter2[Position, Vision]
	spriteFilter *ecs.Filter2[Position, Drawable]
}

// NewStore creates an empty store.
func NewStore() *Store {
	w := ecs.NewWorld()
	return &Store{
		world:        w,
		positions:    ecs.NewMap[Position](w),
		houses:       ecs.NewMap[House](w),
		persons:      ecs.NewMap[Person](w),
		visions:      ecs.NewMap[Vision](w),
		playerMapper: ecs.NewMap4[Position, Drawable, Vision, Player](w),
		houseMapper:  ecs.NewMap3[Position, Drawable, House](w),
		personMapper: ecs.NewMap3[Position, Drawable, Person](w),
		playerFilter: ecs.NewFilter2[Position, Player](w),
		houseFilter:  ecs.NewFilter2[Position, House](w),
		personFilter: ecs.NewFilter2[Position, Person](w),
		visionFilter: ecs.NewFilter2[Position, Vision](w),
		spriteFilter: ecs.NewFilter2[Position, Drawable](w),
	}
}

// SpawnPlayer creates the player entity. It grants vision.
func (s *Store) SpawnPlayer(pos Position) Entity {
	return s.playerMapper.NewEntity(&pos, &PlayerDrawable, &Vision{GrantsVision: true}, &Player{Alive: true})
}

// SpawnHouse creates an empty house at pos.
func (s *Store) SpawnHouse(pos Position) Entity {
	return s.houseMapper.NewEntity(&pos, &HouseDrawable, &House{})
}

// SpawnPerson creates a person standing at pos whose home is home.
func (s *Store) SpawnPerson(pos, home Position) Entity {
	return s.personMapper.NewEntity(&pos, &PersonDrawable, &Person{Home: home})
}

// GrantVision makes e a source of sight. It is a structural change when e
// had no Vision component before.
func (s *Store) GrantVision(e Entity) {
	v := Vision{GrantsVision: true}
	if s.visions.Has(e) {
		s.visions.Set(e, &v)
		return
	}
	s.visions.Add(e, &v)
}

// Player returns the unique player entity and a pointer to its position.
// The pointer is valid until the next spawn.
func (s *Store) Player() (Entity, *Position, error) {
	var (
		found Entity
		pos   *Position
		count int
	)
	query := s.playerFilter.Query()
	for query.Next() {
		p, _ := query.Get()
		found, pos = query.Entity(), p
		count++
	}
	switch count {
	case 0:
		return found, nil, ErrNoPlayer
	case 1:
		return found, pos, nil
	default:
		return found, nil, ErrMultiplePlayers
	}
}

// EachHouse calls fn for every house with its position.
func (s *Store) EachHouse(fn func(e Entity, pos *Position, h *House)) {
	query := s.houseFilter.Query()
	for query.Next() {
		pos, h := query.Get()
		fn(query.Entity(), pos, h)
	}
}

// EachPerson calls fn for every person with its position.
func (s *Store) EachPerson(fn func(e Entity, pos *Position, p *Person)) {
	query := s.personFilter.Query()
	for query.Next() {
		pos, p := query.Get()
		fn(query.Entity(), pos, p)
	}
}

// VisionSources returns the positions of every entity that grants vision.
func (s *Store) VisionSources() []Position {
	var out []Position
	query := s.visionFilter.Query()
	for query.Next() {
		pos, v := query.Get()
		if v.GrantsVision {
			out = append(out, *pos)
		}
	}
	return out
}

// Sprites returns every drawable entity with its position.
func (s *Store) Sprites() []Sprite {
	var out []Sprite
	query := s.spriteFilter.Query()
	for query.Next() {
		pos, d := query.Get()
		out = append(out, Sprite{Position: *pos, Drawable: *d})
	}
	return out
}

// Position returns the position of e, or nil if it has none.
func (s *Store) Position(e Entity) *Position {
	if !s.world.Alive(e) || !s.positions.Has(e) {
		return nil
	}
	return s.positions.Get(e)
}

// House returns the house component of e, or nil.
func (s *Store) House(e Entity) *House {
	if !s.world.Alive(e) || !s.houses.Has(e) {
		return nil
	}
	return s.houses.Get(e)
}

// Person returns the person component of e, or nil.
func (s *Store) Person(e Entity) *Person {
	if !s.world.Alive(e) || !s.persons.Has(e) {
		return nil
	}
	return s.persons.Get(e)
}

// HouseCount returns the number of houses.
func (s *Store) HouseCount() int {
	query := s.houseFilter.Query()
	n := query.Count()
	query.Close()
	return n
}

// PersonCount returns the number of persons.
func (s *Store) PersonCount() int {
	query := s.personFilter.Query()
	n := query.Count()
	query.Close()
	return n
}

// HousesAt returns the houses standing on pos.
func (s *Store) HousesAt(pos Position) []Entity {
	var out []Entity
	s.EachHouse(func(e Entity, p *Position, _ *House) {
		if *p == pos {
			out = append(out, e)
		}
	})
	return out
}
