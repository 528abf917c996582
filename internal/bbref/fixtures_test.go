package bbref

// Trimmed-down copies of the markup basketball-reference serves.

const totalsPage = `<html><body>
<div id="all_totals_stats">
<table id="totals_stats" class="stats_table">
<thead>
<tr><th>Rk</th><th>Player</th><th>Pos</th><th>Age</th><th>Tm</th><th>G</th><th>FG%</th><th>PTS</th><th></th></tr>
</thead>
<tbody>
<tr class="full_table"><th>1</th><td>John Doe*</td><td>SF</td><td>25</td><td>TOT</td><td>30</td><td>.444</td><td>25</td><td></td></tr>
<tr class="partial_table"><th>1</th><td>John Doe*</td><td>SF</td><td>25</td><td>AAA</td><td>10</td><td>.400</td><td>10</td><td></td></tr>
<tr class="partial_table"><th>1</th><td>John Doe*</td><td>SF</td><td>25</td><td>BBB</td><td>20</td><td>.500</td><td>15</td><td></td></tr>
<tr class="thead"><th>Rk</th><td>Player</td><td>Pos</td><td>Age</td><td>Tm</td><td>G</td><td>FG%</td><td>PTS</td><td></td></tr>
<tr><th>Rk</th><td>Player</td><td>Pos</td><td>Age</td><td>Tm</td><td>G</td><td>FG%</td><td>PTS</td><td></td></tr>
<tr class="full_table"><th>2</th><td>Old Guy</td><td>C</td><td>31</td><td>CCC</td><td>82</td><td></td><td>1,200</td><td></td></tr>
</tbody>
</table>
</div>
</body></html>`

const shootingPage = `<html><body>
<table id="nav"><tr><td>menu</td></tr></table>
<div id="all_shooting_stats">
<!--
<table id="shooting_stats" class="stats_table">
<thead>
<tr class="over_header"><th colspan="6"></th><th colspan="2">Shooting</th><th></th><th colspan="2">% of FGA by Distance</th></tr>
<tr><th>Rk</th><th>Player</th><th>Pos</th><th>Age</th><th>Tm</th><th>G</th><th>FG</th><th>FG%</th><th></th><th>2P</th><th>3P</th></tr>
</thead>
<tbody>
<tr><th>1</th><td>Ann Guard</td><td>PG</td><td>27</td><td>2TM</td><td>60</td><td>400</td><td>.470</td><td></td><td>.600</td><td>.400</td></tr>
<tr><th>1</th><td>Ann Guard</td><td>PG</td><td>27</td><td>AAA</td><td>20</td><td>100</td><td>.440</td><td></td><td>.700</td><td>.300</td></tr>
<tr><th>1</th><td>Ann Guard</td><td>PG</td><td>27</td><td>BBB</td><td>40</td><td>300</td><td>.480</td><td></td><td>.500</td><td>.500</td></tr>
<tr><th>2</th><td>Ben Big</td><td>C</td><td>30</td><td>CCC</td><td>70</td><td>500</td><td>.550</td><td></td><td>.950</td><td>.050</td></tr>
</tbody>
</table>
-->
</div>
</body></html>`
