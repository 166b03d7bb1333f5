/*
Package library stores named text corpora in a SQLite database and turns them
into built markov.Models on demand.

Only corpus text is stored. Models are always rebuilt from that text, so a
corpus can be generated from as soon as it has been inserted.
*/
package library
