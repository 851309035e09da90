package petservice

import "sort"

// Pet is one record served by the fixture service. Keys are capitalized as
// the dogs and fishes backends emit them; Type names the backend.
type Pet struct {
	Name string
	Type string
	Kind string
	Age  int
	URL  string
}

// Path names the host that answered for one service.
type Path struct {
	Service  string
	Hostname string
}

// Payload is the body of GET /pets/v1/data, shaped like the pets aggregator's.
type Payload struct {
	Total     int
	Hostname  string
	Hostnames []Path
	Pets      []Pet
}

// Backend names, reported as Pet.Type and in Payload.Hostnames.
const (
	DogsBackend   = "dogs"
	FishesBackend = "fishes"
)

var dogs = []Pet{
	{"Medor", "", "BullDog", 18, "https://www.petmd.com/sites/default/files/10New_Bulldog_0.jpeg"},
	{"Bil", "", "Bull Terrier", 12, "https://www.petmd.com/sites/default/files/07New_Collie.jpeg"},
	{"Rantaplan", "", "Labrador Retriever", 24, "https://www.petmd.com/sites/default/files/01New_GoldenRetriever.jpeg"},
	{"Lassie", "", "Golden Retriever", 20, "https://www.petmd.com/sites/default/files/11New_MixedBreed.jpeg"},
}

var fishes = []Pet{
	{"Nemo", "", "Poisson Clown", 14, "https://www.sciencesetavenir.fr/assets/img/2019/07/10/cover-r4x3w1000-5d258790dd324-f96f05d4901fc6ce0ab038a685e4d5c99f6cdfe2-jpg.jpg"},
	{"Glumpy", "", "Neon Tetra", 11, "https://www.fishkeepingworld.com/wp-content/uploads/2018/02/Neon-Tetra-New.jpg"},
	{"Dory", "", "Pacific regal blue tang", 12, "http://www.oceanlight.com/stock-photo/palette-surgeonfish-image-07922-671143.jpg"},
	{"Argo", "", "Combattant", 27, "https://www.aquaportail.com/pictures1003/anemone-clown_1267799900_poisson-combattant.jpg"},
}

// Fixtures returns a fresh copy of every served record, each tagged with its
// backend and the whole list stably sorted by name.
func Fixtures() []Pet {
	out := make([]Pet, 0, len(dogs)+len(fishes))
	out = appendTagged(out, dogs, DogsBackend)
	out = appendTagged(out, fishes, FishesBackend)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func appendTagged(out, pets []Pet, backend string) []Pet {
	for _, p := range pets {
		p.Type = backend
		out = append(out, p)
	}
	return out
}

// payload is the aggregated response, with host answering for every service.
func payload(host string) Payload {
	pets := Fixtures()
	return Payload{
		Total:    len(pets),
		Hostname: host,
		Hostnames: []Path{
			{Service: "pets", Hostname: host},
			{Service: DogsBackend, Hostname: host},
			{Service: FishesBackend, Hostname: host},
		},
		Pets: pets,
	}
}
