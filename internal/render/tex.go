package render

// Header-includes blocks for LaTeX output. Pandoc's
// --include-in-header option overrides metadata header-includes, so
// users combining both have to merge these by hand.

// noPrefixCaptionTex defines an environment that suppresses the
// caption prefix for unnumbered tables. The table counter is stepped
// by \caption and must be wound back, and \thetable needs a unique
// stand-in value so hyperref does not see duplicate anchors.
const noPrefixCaptionTex = `%% tablenos: environment to disable table caption prefixes
\makeatletter
\newcounter{tableno}
\newenvironment{tablenos:no-prefix-table-caption}{
  \caption@ifcompatibility{}{
    \let\oldthetable\thetable
    \let\oldtheHtable\theHtable
    \renewcommand{\thetable}{tableno:\thetableno}
    \renewcommand{\theHtable}{tableno:\thetableno}
    \stepcounter{tableno}
    \captionsetup{labelformat=empty}
  }
}{
  \caption@ifcompatibility{}{
    \captionsetup{labelformat=default}
    \let\thetable\oldthetable
    \let\theHtable\oldtheHtable
    \addtocounter{table}{-1}
  }
}
\makeatother
`

// taggedTableTex defines an environment that makes \thetable render a
// table's tag instead of its counter value.
const taggedTableTex = `%% tablenos: environment for tagged tables
\newenvironment{tablenos:tagged-table}[1][]{
  \let\oldthetable\thetable
  \let\oldtheHtable\theHtable
  \renewcommand{\thetable}{#1}
  \renewcommand{\theHtable}{#1}
}{
  \let\thetable\oldthetable
  \let\theHtable\oldtheHtable
  \addtocounter{table}{-1}
}
`

const captionNameTex = `%% tablenos: change the caption name
\renewcommand{\tablename}{%s}
`

const numberBySectionTex = `%% tablenos: number tables by section
\numberwithin{table}{section}
`

const crefNamesTex = `%% tablenos: change cref names
\crefname{table}{%s}{%s}
`

const crefNamesStarTex = `%% tablenos: change Cref names
\Crefname{table}{%s}{%s}
`
