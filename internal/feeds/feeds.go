package feeds

// Format hints at how a source's payload should be parsed. The parser
// still sniffs the body; the hint only decides which strategy it tries
// first.
type Format string

const (
	FormatRSS     Format = "rss"
	FormatAtom    Format = "atom"
	FormatUnknown Format = "unknown"
)

// Source describes one feed endpoint. Pure data, immutable after load.
type Source struct {
	Name string
	URL  string
	Site string
	Hint Format
}

// Defaults is the curated blog list the digest ships with, drawn from the
// Hacker News Popularity Contest 2025. Config may replace it entirely.
var Defaults = []Source{
	{Name: "simonwillison.net", URL: "https://simonwillison.net/atom/everything/", Site: "https://simonwillison.net", Hint: FormatAtom},
	{Name: "jeffgeerling.com", URL: "https://www.jeffgeerling.com/blog.xml", Site: "https://jeffgeerling.com", Hint: FormatUnknown},
	{Name: "seangoedecke.com", URL: "https://www.seangoedecke.com/rss.xml", Site: "https://seangoedecke.com", Hint: FormatRSS},
	{Name: "krebsonsecurity.com", URL: "https://krebsonsecurity.com/feed/", Site: "https://krebsonsecurity.com", Hint: FormatUnknown},
	{Name: "daringfireball.net", URL: "https://daringfireball.net/feeds/main", Site: "https://daringfireball.net", Hint: FormatUnknown},
	{Name: "ericmigi.com", URL: "https://ericmigi.com/rss.xml", Site: "https://ericmigi.com", Hint: FormatRSS},
	{Name: "antirez.com", URL: "http://antirez.com/rss", Site: "http://antirez.com", Hint: FormatRSS},
	{Name: "idiallo.com", URL: "https://idiallo.com/feed.rss", Site: "https://idiallo.com", Hint: FormatRSS},
	{Name: "maurycyz.com", URL: "https://maurycyz.com/index.xml", Site: "https://maurycyz.com", Hint: FormatUnknown},
	{Name: "pluralistic.net", URL: "https://pluralistic.net/feed/", Site: "https://pluralistic.net", Hint: FormatUnknown},
	{Name: "shkspr.mobi", URL: "https://shkspr.mobi/blog/feed/", Site: "https://shkspr.mobi", Hint: FormatUnknown},
	{Name: "lcamtuf.substack.com", URL: "https://lcamtuf.substack.com/feed", Site: "https://lcamtuf.substack.com", Hint: FormatUnknown},
	{Name: "mitchellh.com", URL: "https://mitchellh.com/feed.xml", Site: "https://mitchellh.com", Hint: FormatUnknown},
	{Name: "dynomight.net", URL: "https://dynomight.net/feed.xml", Site: "https://dynomight.net", Hint: FormatUnknown},
	{Name: "utcc.utoronto.ca/~cks", URL: "https://utcc.utoronto.ca/~cks/space/blog/?atom", Site: "https://utcc.utoronto.ca/~cks", Hint: FormatAtom},
	{Name: "xeiaso.net", URL: "https://xeiaso.net/blog.rss", Site: "https://xeiaso.net", Hint: FormatRSS},
	{Name: "devblogs.microsoft.com/oldnewthing", URL: "https://devblogs.microsoft.com/oldnewthing/feed", Site: "https://devblogs.microsoft.com/oldnewthing", Hint: FormatUnknown},
	{Name: "righto.com", URL: "https://www.righto.com/feeds/posts/default", Site: "https://righto.com", Hint: FormatUnknown},
	{Name: "lucumr.pocoo.org", URL: "https://lucumr.pocoo.org/feed.atom", Site: "https://lucumr.pocoo.org", Hint: FormatAtom},
	{Name: "skyfall.dev", URL: "https://skyfall.dev/feed.xml", Site: "https://skyfall.dev", Hint: FormatUnknown},
	{Name: "garymarcus.substack.com", URL: "https://garymarcus.substack.com/feed", Site: "https://garymarcus.substack.com", Hint: FormatUnknown},
	{Name: "rachelbythebay.com", URL: "https://rachelbythebay.com/w/atom.xml", Site: "https://rachelbythebay.com", Hint: FormatAtom},
	{Name: "overreacted.io", URL: "https://overreacted.io/rss.xml", Site: "https://overreacted.io", Hint: FormatRSS},
	{Name: "timsh.org", URL: "https://timsh.org/rss/", Site: "https://timsh.org", Hint: FormatRSS},
	{Name: "johndcook.com", URL: "https://www.johndcook.com/blog/feed/", Site: "https://johndcook.com", Hint: FormatUnknown},
	{Name: "gilesthomas.com", URL: "https://gilesthomas.com/feed/rss.xml", Site: "https://gilesthomas.com", Hint: FormatRSS},
	{Name: "matklad.github.io", URL: "https://matklad.github.io/feed.xml", Site: "https://matklad.github.io", Hint: FormatUnknown},
	{Name: "derekthompson.org", URL: "https://www.theatlantic.com/feed/author/derek-thompson/", Site: "https://derekthompson.org", Hint: FormatUnknown},
	{Name: "evanhahn.com", URL: "https://evanhahn.com/feed.xml", Site: "https://evanhahn.com", Hint: FormatUnknown},
	{Name: "terriblesoftware.org", URL: "https://terriblesoftware.org/feed/", Site: "https://terriblesoftware.org", Hint: FormatUnknown},
	{Name: "rakhim.exotext.com", URL: "https://rakhim.exotext.com/rss.xml", Site: "https://rakhim.exotext.com", Hint: FormatRSS},
	{Name: "joanwestenberg.com", URL: "https://joanwestenberg.com/rss", Site: "https://joanwestenberg.com", Hint: FormatRSS},
	{Name: "xania.org", URL: "https://xania.org/feed", Site: "https://xania.org", Hint: FormatUnknown},
	{Name: "micahflee.com", URL: "https://micahflee.com/feed/", Site: "https://micahflee.com", Hint: FormatUnknown},
	{Name: "nesbitt.io", URL: "https://nesbitt.io/feed.xml", Site: "https://nesbitt.io", Hint: FormatUnknown},
	{Name: "construction-physics.com", URL: "https://www.construction-physics.com/feed", Site: "https://construction-physics.com", Hint: FormatUnknown},
	{Name: "tedium.co", URL: "https://feed.tedium.co/", Site: "https://tedium.co", Hint: FormatUnknown},
	{Name: "susam.net", URL: "https://susam.net/feed.xml", Site: "https://susam.net", Hint: FormatUnknown},
	{Name: "entropicthoughts.com", URL: "https://entropicthoughts.com/feed.xml", Site: "https://entropicthoughts.com", Hint: FormatUnknown},
	{Name: "buttondown.com/hillelwayne", URL: "https://buttondown.com/hillelwayne/rss", Site: "https://buttondown.com/hillelwayne", Hint: FormatRSS},
	{Name: "dwarkesh.com", URL: "https://www.dwarkeshpatel.com/feed", Site: "https://dwarkesh.com", Hint: FormatUnknown},
	{Name: "borretti.me", URL: "https://borretti.me/feed.xml", Site: "https://borretti.me", Hint: FormatUnknown},
	{Name: "wheresyoured.at", URL: "https://www.wheresyoured.at/rss/", Site: "https://wheresyoured.at", Hint: FormatRSS},
	{Name: "jayd.ml", URL: "https://jayd.ml/feed.xml", Site: "https://jayd.ml", Hint: FormatUnknown},
	{Name: "minimaxir.com", URL: "https://minimaxir.com/index.xml", Site: "https://minimaxir.com", Hint: FormatUnknown},
	{Name: "geohot.github.io", URL: "https://geohot.github.io/blog/feed.xml", Site: "https://geohot.github.io", Hint: FormatUnknown},
	{Name: "paulgraham.com", URL: "http://www.aaronsw.com/2002/feeds/pgessays.rss", Site: "https://paulgraham.com", Hint: FormatRSS},
	{Name: "filfre.net", URL: "https://www.filfre.net/feed/", Site: "https://filfre.net", Hint: FormatUnknown},
	{Name: "blog.jim-nielsen.com", URL: "https://blog.jim-nielsen.com/feed.xml", Site: "https://blog.jim-nielsen.com", Hint: FormatUnknown},
	{Name: "dfarq.homeip.net", URL: "https://dfarq.homeip.net/feed/", Site: "https://dfarq.homeip.net", Hint: FormatUnknown},
	{Name: "jyn.dev", URL: "https://jyn.dev/atom.xml", Site: "https://jyn.dev", Hint: FormatAtom},
	{Name: "geoffreylitt.com", URL: "https://www.geoffreylitt.com/feed.xml", Site: "https://geoffreylitt.com", Hint: FormatUnknown},
	{Name: "downtowndougbrown.com", URL: "https://www.downtowndougbrown.com/feed/", Site: "https://downtowndougbrown.com", Hint: FormatUnknown},
	{Name: "brutecat.com", URL: "https://brutecat.com/rss.xml", Site: "https://brutecat.com", Hint: FormatRSS},
	{Name: "eli.thegreenplace.net", URL: "https://eli.thegreenplace.net/feeds/all.atom.xml", Site: "https://eli.thegreenplace.net", Hint: FormatAtom},
	{Name: "abortretry.fail", URL: "https://www.abortretry.fail/feed", Site: "https://abortretry.fail", Hint: FormatUnknown},
	{Name: "fabiensanglard.net", URL: "https://fabiensanglard.net/rss.xml", Site: "https://fabiensanglard.net", Hint: FormatRSS},
	{Name: "oldvcr.blogspot.com", URL: "https://oldvcr.blogspot.com/feeds/posts/default", Site: "https://oldvcr.blogspot.com", Hint: FormatUnknown},
	{Name: "bogdanthegeek.github.io", URL: "https://bogdanthegeek.github.io/blog/index.xml", Site: "https://bogdanthegeek.github.io", Hint: FormatUnknown},
	{Name: "hugotunius.se", URL: "https://hugotunius.se/feed.xml", Site: "https://hugotunius.se", Hint: FormatUnknown},
	{Name: "gwern.net", URL: "https://gwern.substack.com/feed", Site: "https://gwern.net", Hint: FormatUnknown},
	{Name: "berthub.eu", URL: "https://berthub.eu/articles/index.xml", Site: "https://berthub.eu", Hint: FormatUnknown},
	{Name: "chadnauseam.com", URL: "https://chadnauseam.com/rss.xml", Site: "https://chadnauseam.com", Hint: FormatRSS},
	{Name: "simone.org", URL: "https://simone.org/feed/", Site: "https://simone.org", Hint: FormatUnknown},
	{Name: "it-notes.dragas.net", URL: "https://it-notes.dragas.net/feed/", Site: "https://it-notes.dragas.net", Hint: FormatUnknown},
	{Name: "beej.us", URL: "https://beej.us/blog/rss.xml", Site: "https://beej.us", Hint: FormatRSS},
	{Name: "hey.paris", URL: "https://hey.paris/index.xml", Site: "https://hey.paris", Hint: FormatUnknown},
	{Name: "danielwirtz.com", URL: "https://danielwirtz.com/rss.xml", Site: "https://danielwirtz.com", Hint: FormatRSS},
	{Name: "matduggan.com", URL: "https://matduggan.com/rss/", Site: "https://matduggan.com", Hint: FormatRSS},
	{Name: "refactoringenglish.com", URL: "https://refactoringenglish.com/index.xml", Site: "https://refactoringenglish.com", Hint: FormatUnknown},
	{Name: "worksonmymachine.substack.com", URL: "https://worksonmymachine.substack.com/feed", Site: "https://worksonmymachine.substack.com", Hint: FormatUnknown},
	{Name: "philiplaine.com", URL: "https://philiplaine.com/index.xml", Site: "https://philiplaine.com", Hint: FormatUnknown},
	{Name: "steveblank.com", URL: "https://steveblank.com/feed/", Site: "https://steveblank.com", Hint: FormatUnknown},
	{Name: "bernsteinbear.com", URL: "https://bernsteinbear.com/feed.xml", Site: "https://bernsteinbear.com", Hint: FormatUnknown},
	{Name: "danieldelaney.net", URL: "https://danieldelaney.net/feed", Site: "https://danieldelaney.net", Hint: FormatUnknown},
	{Name: "troyhunt.com", URL: "https://www.troyhunt.com/rss/", Site: "https://troyhunt.com", Hint: FormatRSS},
	{Name: "herman.bearblog.dev", URL: "https://herman.bearblog.dev/feed/", Site: "https://herman.bearblog.dev", Hint: FormatUnknown},
	{Name: "tomrenner.com", URL: "https://tomrenner.com/index.xml", Site: "https://tomrenner.com", Hint: FormatUnknown},
	{Name: "blog.pixelmelt.dev", URL: "https://blog.pixelmelt.dev/rss/", Site: "https://blog.pixelmelt.dev", Hint: FormatRSS},
	{Name: "martinalderson.com", URL: "https://martinalderson.com/feed.xml", Site: "https://martinalderson.com", Hint: FormatUnknown},
	{Name: "danielchasehooper.com", URL: "https://danielchasehooper.com/feed.xml", Site: "https://danielchasehooper.com", Hint: FormatUnknown},
	{Name: "chiark.greenend.org.uk/~sgtatham", URL: "https://www.chiark.greenend.org.uk/~sgtatham/quasiblog/feed.xml", Site: "https://chiark.greenend.org.uk/~sgtatham", Hint: FormatUnknown},
	{Name: "grantslatton.com", URL: "https://grantslatton.com/rss.xml", Site: "https://grantslatton.com", Hint: FormatRSS},
	{Name: "experimental-history.com", URL: "https://www.experimental-history.com/feed", Site: "https://experimental-history.com", Hint: FormatUnknown},
	{Name: "anildash.com", URL: "https://anildash.com/feed.xml", Site: "https://anildash.com", Hint: FormatUnknown},
	{Name: "aresluna.org", URL: "https://aresluna.org/main.rss", Site: "https://aresluna.org", Hint: FormatRSS},
	{Name: "michael.stapelberg.ch", URL: "https://michael.stapelberg.ch/feed.xml", Site: "https://michael.stapelberg.ch", Hint: FormatUnknown},
	{Name: "miguelgrinberg.com", URL: "https://blog.miguelgrinberg.com/feed", Site: "https://miguelgrinberg.com", Hint: FormatUnknown},
	{Name: "keygen.sh", URL: "https://keygen.sh/blog/feed.xml", Site: "https://keygen.sh", Hint: FormatUnknown},
	{Name: "mjg59.dreamwidth.org", URL: "https://mjg59.dreamwidth.org/data/rss", Site: "https://mjg59.dreamwidth.org", Hint: FormatRSS},
	{Name: "computer.rip", URL: "https://computer.rip/rss.xml", Site: "https://computer.rip", Hint: FormatRSS},
	{Name: "tedunangst.com", URL: "https://www.tedunangst.com/flak/rss", Site: "https://tedunangst.com", Hint: FormatRSS},}
