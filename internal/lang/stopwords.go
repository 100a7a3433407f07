package lang

// englishStopwords is a general-purpose English function word list
const englishStopwords = `
a about above after again against all almost also although always am among an and
another any anybody anyone anything anyway anywhere are aren't around as at
be became because become becomes been before being below beside besides between
beyond both but by can can't cannot could couldn't did didn't do does doesn't doing
don't done down during each either else elsewhere enough etc even ever every
everyone everything everywhere except few for former formerly from further had
hadn't has hasn't have haven't having he he'd he'll he's hence her here here's hers
herself him himself his how how's however i i'd i'll i'm i've ie if in indeed into
is isn't it it's its itself just least less let's like likely many may me meanwhile
might mine more moreover most mostly much must mustn't my myself namely neither
never nevertheless next no nobody none nor not nothing now nowhere of off often on
once one only onto or other others otherwise ought our ours ourselves out over own
per perhaps quite rather really same several shall shan't she she'd she'll she's
should shouldn't since so some somehow someone something sometime sometimes
somewhere still such than that that's the their theirs them themselves then there
there's thereafter thereby therefore these they they'd they'll they're they've this
those though through throughout thus to together too toward towards under until up
upon us very via was wasn't we we'd we'll we're we've were weren't what what's
whatever when when's whenever where where's whereas whether which while who who's
whoever whole whom whose why why's will with within without won't would wouldn't yet
you you'd you'll you're you've your yours yourself yourselves 's n't
`

// frenchStopwords is a general-purpose French function word list
const frenchStopwords = `
a à afin ai aie aient aies ait as au aucun aucune aupres auquel aura aurai auraient
aurais aurait auras aurez auriez aurions aurons auront aussi autre autres aux
auxquelles auxquels avaient avais avait avant avec avez aviez avions avoir avons
ayant ayez ayons c ce ceci cela celle celles celui cependant certain certaine
certaines certains ces cet cette ceux chacun chacune chaque chez ci comme comment d
dans de des donc dont du elle elles en encore entre es est et étaient étais était
étant été êtes étiez étions être eu eue eues eûmes eurent eus eut eux fait faites
fois furent fut fûmes ici il ils j je jusqu jusque l la là laquelle le lequel les
lesquelles lesquels leur leurs lors lorsque lui m ma mais me même mêmes mes moi
moins mon n ne ni non nos notre nous on ont ou où par parce pas pendant peu peut
plus plusieurs pour pourquoi puis qu quand que quel quelle quelles quels qui quoi s
sa sans se selon ses seulement si sien sienne son sont sous soyez suis sur t ta tandis
te tes toi ton tous tout toute toutes très tu un une vos votre vous y
`

// spanishStopwords is a general-purpose Spanish function word list
const spanishStopwords = `
a al algo algunas algunos ante antes como con contra cual cuando de del desde donde
durante e el él ella ellas ellos en entre era erais eran eras eres es esa esas ese
eso esos esta está estaba estaban estado estamos están estar estas este esto estos
estoy fue fueron fui fuimos ha había habían han has hasta hay la las le les lo los
me mi mí mis mucho muchos muy nada ni no nos nosotras nosotros o os otra otras otro
otros para pero poco por porque que qué quien quienes se sea sean ser si sí siempre
sin sobre sois solo somos son soy su sus también tanto te tenemos tener tengo ti
tiene tienen todo todos tu tú tus un una unas uno unos vosotras vosotros y ya yo
`
