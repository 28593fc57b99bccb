// internal/game/cardjudge/cards.go
package cardjudge

// Prompt is a black card. Pick is how many white cards an answer needs.
type Prompt struct {
	Text string `json:"text"`
	Pick int    `json:"pick"`
}

var blackCards = []Prompt{
	{"The secret ingredient in grandma's soup is ____.", 1},
	{"My therapist says I need to stop thinking about ____.", 1},
	{"Breaking news: scientists have discovered ____.", 1},
	{"The worst thing to find in your sandwich: ____.", 1},
	{"What ended the office party early?", 1},
	{"I got kicked out of the library for ____.", 1},
	{"Next season on reality TV: ____.", 1},
	{"My superpower is ____.", 1},
	{"What's hiding under the bed?", 1},
	{"The real reason the dinosaurs went extinct: ____.", 1},
	{"Tonight's dessert special: ____.", 1},
	{"What does the fox actually say?", 1},
	{"The new national sport is ____.", 1},
	{"My dating profile proudly mentions ____.", 1},
	{"The museum's newest exhibit: ____.", 1},
	{"What keeps the mayor up at night?", 1},
	{"Instead of coal, Santa now brings ____.", 1},
	{"The self-help book nobody asked for: ____.", 1},
	{"____ is the key to a happy marriage.", 1},
	{"My last group chat was just ____.", 1},
	{"____ and ____: the perfect combination.", 2},
	{"First ____, then ____. Classic Monday.", 2},
	{"I traded ____ for ____ and I regret nothing.", 2},
	{"The wedding was ruined by ____ and ____.", 2},
	{"In my defense, ____ made me do ____.", 2},
}

var whiteCards = []string{
	"A suspiciously calm goose",
	"Interpretive dance",
	"Forty raccoons in a trench coat",
	"A lukewarm casserole",
	"The group project",
	"Aggressive jazz hands",
	"An unpaid parking ticket",
	"A motivational llama",
	"Socks with sandals",
	"Overthinking everything",
	"A haunted vending machine",
	"Grandpa's conspiracy theories",
	"The last slice of pizza",
	"A very dramatic sneeze",
	"Competitive napping",
	"An emotional support cactus",
	"Reply-all emails",
	"A karaoke power ballad",
	"Finding a tenner in old jeans",
	"Pineapple on everything",
	"A tiny hat for a big dog",
	"The Wi-Fi password",
	"Spontaneous yodeling",
	"A sandwich with no filling",
	"The neighbor's leaf blower",
	"Crying at commercials",
	"A gluten-free existential crisis",
	"Unsolicited advice",
	"A duck wearing boots",
	"The snooze button",
	"Glitter. So much glitter.",
	"Passive-aggressive sticky notes",
	"A lifetime supply of beans",
	"Microwave fish in the office",
	"An accidental tattoo",
	"Running late on purpose",
	"A pirate with stage fright",
	"Mystery leftovers",
	"A dramatic slow clap",
	"The floor is lava",
	"Someone else's baby photos",
	"A confident but wrong answer",
	"Instant regret",
	"The world's smallest violin",
	"Buying a boat",
	"Pretending to understand wine",
	"A bag of cursed marbles",
	"Yelling at the printer",
	"A surprise flash mob",
	"Extreme couponing",
	"Free samples",
	"A slightly damp towel",
	"The chosen one",
	"Uncle Dave's famous chili",
	"A robot learning to love",
	"A pigeon with a plan",
	"Spicy mayonnaise",
	"An unreasonably long receipt",
	"The wrong kind of glue",
	"Snacks before dinner",
	"A spreadsheet of feelings",
	"Monday morning energy",
	"An awkward high five",
	"Three weeks of laundry",
	"Finger guns",
	"A cat that refuses to move",
	"Accidentally liking an old photo",
	"Putting ketchup on cereal",
	"A suspicious amount of cheese",
	"Doing taxes for fun",
	"A motivational poster of a kitten",
	"Sleeping through the alarm",
	"Whispering loudly",
	"A box of live crickets",
	"The sequel nobody wanted",
	"Humming the wrong song",
	"A perfectly timed burp",
	"An exotic houseplant",
	"Knitting at a concert",
	"Buffering",
}
