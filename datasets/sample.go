package datasets

// A small built-in corpus in the shape of the newsgroup data: four topics
// with distinct vocabularies. It exists so unit tests and examples can
// exercise the full load-vectorize-fit path without network access.

var sampleTargetNames = []string{
	"comp.graphics",
	"rec.sport.hockey",
	"sci.space",
	"talk.politics.misc",
}

var sampleDocs = []struct {
	target int
	text   string
}{
	{0, "The new graphics card renders polygons and textures with fast shaders"},
	{0, "Looking for an image viewer that handles jpeg and gif formats"},
	{0, "Anyone benchmark opengl rendering on this graphics chipset?"},
	{0, "The shader pipeline stalls when texture memory is exhausted"},
	{0, "Converting bitmap images to vector formats loses fine detail"},
	{0, "Our renderer draws polygons with antialiasing and alpha blending"},
	{0, "The animation toolkit exports frames as compressed image sequences"},
	{0, "Driver updates fixed the flickering textures in the viewer"},
	{1, "The goalie stopped forty shots and the team won in overtime"},
	{1, "Their forward scored a hat trick in the third period"},
	{1, "The playoffs start next week and the rink is sold out"},
	{1, "A slashing penalty late in the period cost them the game"},
	{1, "The coach benched the defenseman after two bad line changes"},
	{1, "Hockey fans filled the arena hours before the puck dropped"},
	{1, "The referee waved off the goal after a high stick"},
	{1, "Back to back overtime wins put the team into the playoffs"},
	{2, "The orbiter fired its thrusters to adjust the orbit around the moon"},
	{2, "Telemetry from the probe shows stable solar panel output"},
	{2, "The launch window for the mars mission opens in october"},
	{2, "Astronauts completed the spacewalk and repaired the antenna"},
	{2, "The telescope captured spectra from a distant supernova"},
	{2, "Rocket staging occurred nominally and the payload reached orbit"},
	{2, "The lander transmitted images from the crater rim at dawn"},
	{2, "Mission control confirmed the satellite deployed both arrays"},
	{3, "The senator proposed a bill to reform the election funding rules"},
	{3, "Voters are skeptical about the new tax policy debate"},
	{3, "The committee hearing on the budget ran past midnight"},
	{3, "Lobbyists pushed the amendment through before the recess"},
	{3, "The governor vetoed the spending bill over deficit concerns"},
	{3, "Polls show the incumbent losing ground before the election"},
	{3, "Congress debated the treaty for a third consecutive day"},
	{3, "The mayor's press conference addressed the zoning scandal"},
}

// LoadSampleCorpus returns the built-in sample corpus, shuffled with the
// given seed through the same code path as the fetched corpus.
func LoadSampleCorpus(shuffle bool, seed int64) *Newsgroups {
	ng := &Newsgroups{
		Data:        make([]string, len(sampleDocs)),
		Target:      make([]int, len(sampleDocs)),
		TargetNames: append([]string(nil), sampleTargetNames...),
	}
	for i, d := range sampleDocs {
		ng.Data[i] = d.text
		ng.Target[i] = d.target
	}
	if shuffle {
		shuffleCorpus(ng, seed)
	}
	return ng
}
